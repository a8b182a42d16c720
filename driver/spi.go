package driver

import "sync"

// SPIMode selects the clock polarity/phase combination, per
// original_source's spi_helpers.rs mode 0-3 table.
type SPIMode int

const (
	SPIMode0 SPIMode = iota // CPOL=0, CPHA=0
	SPIMode1                // CPOL=0, CPHA=1
	SPIMode2                // CPOL=1, CPHA=0
	SPIMode3                // CPOL=1, CPHA=1
)

// SPIConfig is a bus's current clock configuration.
type SPIConfig struct {
	Mode    SPIMode
	SpeedHz uint32
}

// SPIBus is a software model of an SPI bus, grounded on original_source's
// spi_helpers.rs shell command surface (config/transfer/write/read). A
// single loopback-style byte buffer stands in for the attached device,
// enough to exercise configuration and transfer semantics without real
// MOSI/MISO wiring.
type SPIBus struct {
	mu          sync.Mutex
	initialized bool
	configured  bool
	cfg         SPIConfig
	loopback    []byte
}

// NewSPIBus creates an uninitialized, unconfigured bus.
func NewSPIBus() *SPIBus {
	return &SPIBus{}
}

// Init marks the bus ready for configuration.
func (s *SPIBus) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initialized = true
	return nil
}

// IsInitialized reports whether Init has run.
func (s *SPIBus) IsInitialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

func (s *SPIBus) checkReady() error {
	if !s.initialized {
		return newErr(NotInitialized, "spi bus not initialized")
	}
	return nil
}

// Config sets the clock mode and speed. Must be called, after Init, before
// any transfer/write/read.
func (s *SPIBus) Config(mode SPIMode, speedHz uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkReady(); err != nil {
		return err
	}
	if mode < SPIMode0 || mode > SPIMode3 {
		return newErr(InvalidParameter, "spi mode %d out of range [0, 3]", mode)
	}
	if speedHz == 0 {
		return newErr(InvalidParameter, "spi speed must be nonzero")
	}
	s.cfg = SPIConfig{Mode: mode, SpeedHz: speedHz}
	s.configured = true
	return nil
}

func (s *SPIBus) checkConfigured() error {
	if err := s.checkReady(); err != nil {
		return err
	}
	if !s.configured {
		return newErr(InvalidDevice, "spi bus not configured; run `spi config` first")
	}
	return nil
}

// Transfer writes tx and returns the same number of bytes read back,
// looped through the simulated device's last-written buffer.
func (s *SPIBus) Transfer(tx []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkConfigured(); err != nil {
		return nil, err
	}
	rx := make([]byte, len(tx))
	copy(rx, s.loopback)
	s.loopback = append([]byte(nil), tx...)
	return rx, nil
}

// Write sends data without reading a reply.
func (s *SPIBus) Write(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkConfigured(); err != nil {
		return err
	}
	s.loopback = append([]byte(nil), data...)
	return nil
}

// Read returns count bytes from the simulated device's buffer.
func (s *SPIBus) Read(count int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkConfigured(); err != nil {
		return nil, err
	}
	if count <= 0 {
		return nil, newErr(InvalidParameter, "read count must be positive")
	}
	out := make([]byte, count)
	copy(out, s.loopback)
	return out, nil
}

// Config returns the bus's current configuration and whether it has been
// set.
func (s *SPIBus) CurrentConfig() (SPIConfig, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg, s.configured
}
