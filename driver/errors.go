// Package driver implements the probe/bind/start/stop driver lifecycle,
// the fixed-capacity driver registry, and the timeout/validator hardening
// layer wrapped around driver MMIO work, per spec section 4.2.
//
// https://github.com/sis-kernel/sisk
//
// Copyright (c) The Sisk Authors
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.
package driver

import (
	"errors"
	"fmt"
)

// Error is the driver framework's error taxonomy, matching
// original_source/crates/kernel/src/driver.rs's DriverError variants plus
// the additions spec.md names (AlignmentError, NotInitialized, HardwareError,
// Timeout, VerificationFailed).
type Error struct {
	Kind    ErrorKind
	Timeout *TimeoutError
	msg     string
}

// ErrorKind enumerates the driver framework's error taxonomy.
type ErrorKind int

const (
	NoDriver ErrorKind = iota
	InitFailed
	InvalidDevice
	InvalidParameter
	AlignmentError
	NotInitialized
	HardwareError
	TimeoutKind
	ResourceError
	NotSupported
	RegistryFull
	InvalidQueue
	VerificationFailed
)

func (k ErrorKind) String() string {
	switch k {
	case NoDriver:
		return "no suitable driver found"
	case InitFailed:
		return "driver initialization failed"
	case InvalidDevice:
		return "invalid device configuration"
	case InvalidParameter:
		return "invalid parameter"
	case AlignmentError:
		return "alignment error"
	case NotInitialized:
		return "driver not initialized"
	case HardwareError:
		return "hardware error"
	case TimeoutKind:
		return "timeout"
	case ResourceError:
		return "resource allocation failed"
	case NotSupported:
		return "operation not supported"
	case RegistryFull:
		return "driver registry is full"
	case InvalidQueue:
		return "invalid or unavailable virtqueue"
	case VerificationFailed:
		return "verification failed"
	default:
		return "unknown driver error"
	}
}

func (e *Error) Error() string {
	if e.msg != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.msg)
	}
	return e.Kind.String()
}

// Is supports errors.Is(err, driver.ErrX) matching by kind.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

func newErr(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Sentinels for errors.Is comparisons against a bare kind.
var (
	ErrNoDriver            = &Error{Kind: NoDriver}
	ErrInitFailed          = &Error{Kind: InitFailed}
	ErrInvalidDevice       = &Error{Kind: InvalidDevice}
	ErrInvalidParameter    = &Error{Kind: InvalidParameter}
	ErrAlignmentError      = &Error{Kind: AlignmentError}
	ErrNotInitialized      = &Error{Kind: NotInitialized}
	ErrHardwareError       = &Error{Kind: HardwareError}
	ErrResourceError       = &Error{Kind: ResourceError}
	ErrNotSupported        = &Error{Kind: NotSupported}
	ErrRegistryFull        = &Error{Kind: RegistryFull}
	ErrInvalidQueue        = &Error{Kind: InvalidQueue}
	ErrVerificationFailed  = &Error{Kind: VerificationFailed}
)
