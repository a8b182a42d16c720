package driver

import "testing"

func readySPIBus(t *testing.T) *SPIBus {
	t.Helper()
	s := NewSPIBus()
	if err := s.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := s.Config(SPIMode0, 1_000_000); err != nil {
		t.Fatalf("Config: %v", err)
	}
	return s
}

func TestSPITransferBeforeConfigRejected(t *testing.T) {
	s := NewSPIBus()
	s.Init()
	if _, err := s.Transfer([]byte{0x01}); err == nil {
		t.Fatalf("Transfer before Config: want error, got nil")
	}
}

func TestSPIConfigRejectsInvalidMode(t *testing.T) {
	s := NewSPIBus()
	s.Init()
	if err := s.Config(SPIMode(4), 1000); err == nil {
		t.Fatalf("Config(mode=4): want error, got nil")
	}
}

func TestSPIConfigRejectsZeroSpeed(t *testing.T) {
	s := NewSPIBus()
	s.Init()
	if err := s.Config(SPIMode0, 0); err == nil {
		t.Fatalf("Config(speed=0): want error, got nil")
	}
}

func TestSPIWriteThenReadLoopback(t *testing.T) {
	s := readySPIBus(t)
	data := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	if err := s.Write(data); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read(len(data))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	for i := range data {
		if got[i] != data[i] {
			t.Fatalf("Read = %v, want %v", got, data)
		}
	}
}

func TestSPITransferReturnsPriorBufferThenUpdates(t *testing.T) {
	s := readySPIBus(t)
	first, _ := s.Transfer([]byte{0x01, 0x02})
	if len(first) != 2 {
		t.Fatalf("len(first) = %d, want 2", len(first))
	}
	second, err := s.Transfer([]byte{0x03, 0x04})
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if second[0] != 0x01 || second[1] != 0x02 {
		t.Fatalf("second transfer rx = %v, want prior tx [0x01 0x02]", second)
	}
}

func TestSPICurrentConfigReportsSetValues(t *testing.T) {
	s := readySPIBus(t)
	cfg, ok := s.CurrentConfig()
	if !ok {
		t.Fatalf("CurrentConfig ok = false, want true")
	}
	if cfg.Mode != SPIMode0 || cfg.SpeedHz != 1_000_000 {
		t.Fatalf("CurrentConfig = %+v, want Mode0/1MHz", cfg)
	}
}
