package syscall

import "testing"

func TestValidateFDRejectsNegativeAndOutOfRange(t *testing.T) {
	v := Validator{}
	if _, err := v.ValidateFD(-1); err == nil {
		t.Fatalf("ValidateFD(-1): want error, got nil")
	}
	if _, err := v.ValidateFD(MaxFD); err == nil {
		t.Fatalf("ValidateFD(MaxFD): want error, got nil")
	}
	if _, err := v.ValidateFD(0); err != nil {
		t.Fatalf("ValidateFD(0): %v", err)
	}
}

func TestValidateUserPointerRejectsNull(t *testing.T) {
	v := Validator{}
	if _, err := v.ValidateUserPointer(0, 8); err == nil {
		t.Fatalf("ValidateUserPointer(0, 8): want error, got nil")
	}
}

func TestValidateUserPointerRejectsKernelRange(t *testing.T) {
	v := Validator{}
	if _, err := v.ValidateUserPointer(KernelSpaceStart, 8); err == nil {
		t.Fatalf("ValidateUserPointer(KernelSpaceStart, 8): want error, got nil")
	}
}

func TestValidateUserPointerRejectsOverlapIntoKernelRange(t *testing.T) {
	v := Validator{}
	// Starts just below KernelSpaceStart (already past UserSpaceEnd) and the
	// range's end crosses into kernel space.
	if _, err := v.ValidateUserPointer(KernelSpaceStart-4, 16); err == nil {
		t.Fatalf("ValidateUserPointer straddling kernel boundary: want error, got nil")
	}
}

func TestValidateUserPointerAcceptsValidRange(t *testing.T) {
	v := Validator{}
	if _, err := v.ValidateUserPointer(UserSpaceStart, 4096); err != nil {
		t.Fatalf("ValidateUserPointer(valid range): %v", err)
	}
}

func TestValidateReadBufferRejectsOversizedLength(t *testing.T) {
	v := Validator{}
	if _, _, err := v.ValidateReadBuffer(UserSpaceStart, MaxIOSize+1); err == nil {
		t.Fatalf("ValidateReadBuffer(MaxIOSize+1): want error, got nil")
	}
}

func TestValidateFlagsRejectsBitsOutsideMask(t *testing.T) {
	v := Validator{}
	if _, err := v.ValidateFlags(0b1010, 0b0010); err == nil {
		t.Fatalf("ValidateFlags with extra bits: want error, got nil")
	}
	if _, err := v.ValidateFlags(0b0010, 0b1010); err != nil {
		t.Fatalf("ValidateFlags subset of mask: %v", err)
	}
}

func TestValidateSignalRange(t *testing.T) {
	v := Validator{}
	if _, err := v.ValidateSignal(-1); err == nil {
		t.Fatalf("ValidateSignal(-1): want error, got nil")
	}
	if _, err := v.ValidateSignal(65); err == nil {
		t.Fatalf("ValidateSignal(65): want error, got nil")
	}
	if _, err := v.ValidateSignal(64); err != nil {
		t.Fatalf("ValidateSignal(64): %v", err)
	}
}

func TestValidatePIDRejectsBelowNegativeOne(t *testing.T) {
	v := Validator{}
	if _, err := v.ValidatePID(-2); err == nil {
		t.Fatalf("ValidatePID(-2): want error, got nil")
	}
	if _, err := v.ValidatePID(-1); err != nil {
		t.Fatalf("ValidatePID(-1): %v", err)
	}
}

func TestErrnoString(t *testing.T) {
	if EINVAL.String() != "EINVAL" {
		t.Fatalf("EINVAL.String() = %q", EINVAL.String())
	}
}
