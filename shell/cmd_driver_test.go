package shell

import (
	"strings"
	"testing"

	"github.com/sis-kernel/sisk/driver"
)

func TestGPIOCommandSetReadClear(t *testing.T) {
	s := New()
	g := driver.NewGPIOController()
	g.Init()
	RegisterGPIO(s, g)

	s.Dispatch("gpio set 10")
	out := s.Dispatch("gpio read 10")
	if !strings.Contains(out, "true") {
		t.Fatalf("gpio read 10 = %q, want true after set", out)
	}

	s.Dispatch("gpio clear 10")
	out = s.Dispatch("gpio read 10")
	if !strings.Contains(out, "false") {
		t.Fatalf("gpio read 10 = %q, want false after clear", out)
	}
}

func TestGPIOCommandBoundaryPin(t *testing.T) {
	s := New()
	g := driver.NewGPIOController()
	g.Init()
	RegisterGPIO(s, g)

	if out := s.Dispatch("gpio set 53"); strings.Contains(out, "[GPIO]") {
		t.Fatalf("gpio set 53 = %q, want success", out)
	}
	if out := s.Dispatch("gpio set 54"); !strings.Contains(out, "[GPIO]") {
		t.Fatalf("gpio set 54 = %q, want rejection", out)
	}
}

func TestI2CCommandScanAndWriteRead(t *testing.T) {
	s := New()
	b := driver.NewI2CBus()
	b.Init()
	b.AttachDevice(0x50)
	RegisterI2C(s, b)

	out := s.Dispatch("i2c scan")
	if !strings.Contains(out, "1 device") {
		t.Fatalf("i2c scan = %q, want 1 device", out)
	}

	s.Dispatch("i2c write 0x50 0x01 0x02")
	out = s.Dispatch("i2c read 0x50 2")
	if !strings.Contains(out, "01 02") {
		t.Fatalf("i2c read = %q, want 01 02", out)
	}
}

func TestSPICommandConfigThenTransfer(t *testing.T) {
	s := New()
	b := driver.NewSPIBus()
	b.Init()
	RegisterSPI(s, b)

	if out := s.Dispatch("spi config 0 1000000"); !strings.Contains(out, "configured") {
		t.Fatalf("spi config = %q", out)
	}
	out := s.Dispatch("spi write 0xde 0xad")
	if !strings.Contains(out, "wrote 2 byte") {
		t.Fatalf("spi write = %q", out)
	}
}

func TestPWMCommandRoundTrip(t *testing.T) {
	s := New()
	p := driver.NewPWMController()
	p.Init()
	RegisterPWM(s, p)

	s.Dispatch("pwm enable 0 0")
	s.Dispatch("pwm freq 0 0 25000")
	s.Dispatch("pwm disable 0 0")
	s.Dispatch("pwm enable 0 0")

	st := p.State(0, 0)
	if st.Frequency != 25000 {
		t.Fatalf("Frequency after shell round trip = %d, want 25000", st.Frequency)
	}
}
