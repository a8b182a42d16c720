package driver

import "sync"

// Mailbox is a software model of the firmware property-channel mailbox
// (board serial/model/revision/firmware-revision queries), grounded on
// teacher soc/bcm2835/mailbox.go's property-tag query protocol, generalized
// away from the VideoCore wire format since the self-test harness and shell
// only need the query surface, not the real property-channel encoding.
type Mailbox struct {
	mu          sync.Mutex
	initialized bool

	boardSerial     uint64
	firmwareRev     uint32
	boardModel      uint32
	boardRevision   uint32
	queriesServed   uint64
}

// NewMailbox creates an uninitialized mailbox with fixed identity values,
// standing in for the values a real firmware property channel would return.
func NewMailbox() *Mailbox {
	return &Mailbox{
		boardSerial:   0x00000000CAFEF00D,
		firmwareRev:   1,
		boardModel:    0x0a03111a,
		boardRevision: 1,
	}
}

// Init marks the mailbox ready to serve queries.
func (m *Mailbox) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initialized = true
	return nil
}

// IsInitialized reports whether Init has run.
func (m *Mailbox) IsInitialized() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initialized
}

func (m *Mailbox) checkReady() error {
	if !m.initialized {
		return newErr(NotInitialized, "mailbox not initialized")
	}
	return nil
}

// GetBoardSerial returns the board's firmware-reported serial number.
func (m *Mailbox) GetBoardSerial() (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkReady(); err != nil {
		return 0, err
	}
	m.queriesServed++
	return m.boardSerial, nil
}

// GetFirmwareRevision returns the firmware revision tag.
func (m *Mailbox) GetFirmwareRevision() (uint32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkReady(); err != nil {
		return 0, err
	}
	m.queriesServed++
	return m.firmwareRev, nil
}

// GetBoardModel returns the board model tag.
func (m *Mailbox) GetBoardModel() (uint32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkReady(); err != nil {
		return 0, err
	}
	m.queriesServed++
	return m.boardModel, nil
}

// GetBoardRevision returns the board revision tag.
func (m *Mailbox) GetBoardRevision() (uint32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkReady(); err != nil {
		return 0, err
	}
	m.queriesServed++
	return m.boardRevision, nil
}

// QueriesServed reports how many successful queries the mailbox has
// answered.
func (m *Mailbox) QueriesServed() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queriesServed
}
