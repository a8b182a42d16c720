package driver

import "testing"

func TestGPIOBoundaryPin53Accepts54Rejects(t *testing.T) {
	g := NewGPIOController()
	g.Init()

	if err := g.SetPin(MaxGPIOPin); err != nil {
		t.Fatalf("SetPin(%d) = %v, want nil", MaxGPIOPin, err)
	}
	if err := g.SetPin(MaxGPIOPin + 1); err == nil {
		t.Fatalf("SetPin(%d) = nil, want InvalidParameter", MaxGPIOPin+1)
	}
}

func TestGPIOValidPinRoundTrip(t *testing.T) {
	g := NewGPIOController()
	g.Init()

	for _, pin := range []int{0, 27, MaxGPIOPin} {
		if err := g.SetPin(pin); err != nil {
			t.Fatalf("SetPin(%d): %v", pin, err)
		}
		if level, err := g.ReadPin(pin); err != nil || !level {
			t.Fatalf("ReadPin(%d) = (%v, %v), want (true, nil)", pin, level, err)
		}
		if err := g.ClearPin(pin); err != nil {
			t.Fatalf("ClearPin(%d): %v", pin, err)
		}
		if level, err := g.ReadPin(pin); err != nil || level {
			t.Fatalf("ReadPin(%d) after clear = (%v, %v), want (false, nil)", pin, level, err)
		}
	}
}

func TestGPIOInvalidPinsRejected(t *testing.T) {
	g := NewGPIOController()
	g.Init()

	for _, pin := range []int{54, 55, 100} {
		if err := g.SetPin(pin); err == nil {
			t.Errorf("SetPin(%d) = nil, want error", pin)
		}
	}
}

func TestGPIORejectsBeforeInit(t *testing.T) {
	g := NewGPIOController()
	if err := g.SetPin(0); err == nil {
		t.Fatalf("SetPin before Init = nil, want NotInitialized")
	}
	if g.IsInitialized() {
		t.Fatalf("IsInitialized = true before Init")
	}
}
