package syscall

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ResourceKind names one of the resources a scope's limits govern.
type ResourceKind int

const (
	ResourceSyscalls ResourceKind = iota
	ResourceIOBytes
	ResourceAllocations
)

func (k ResourceKind) String() string {
	switch k {
	case ResourceSyscalls:
		return "syscalls"
	case ResourceIOBytes:
		return "io_bytes"
	case ResourceAllocations:
		return "allocations"
	default:
		return "unknown"
	}
}

// ScopeLimits is a per-scope (e.g. per-driver, per-agent) resource guard:
// an hourly token-bucket budget per ResourceKind, backed by
// golang.org/x/time/rate the way the teacher's network-facing code rate
// limits inbound work, generalized here from requests-per-second to an
// hourly allowance since kernel resource grants are coarse-grained.
type ScopeLimits struct {
	mu       sync.Mutex
	scope    string
	limiters map[ResourceKind]*rate.Limiter
	budgets  map[ResourceKind]int
}

// NewScopeLimits creates a limits guard for scope where each ResourceKind
// in budgets gets an hourly allowance of that many tokens, refilled
// continuously (rate.Limiter's usual token-bucket semantics) and capped at
// the full hourly amount as burst.
func NewScopeLimits(scope string, budgets map[ResourceKind]int) *ScopeLimits {
	limiters := make(map[ResourceKind]*rate.Limiter, len(budgets))
	for kind, perHour := range budgets {
		if perHour <= 0 {
			continue
		}
		r := rate.Limit(float64(perHour) / time.Hour.Seconds())
		limiters[kind] = rate.NewLimiter(r, perHour)
	}
	return &ScopeLimits{scope: scope, limiters: limiters, budgets: budgets}
}

// Allow consumes one token of kind, returning an error if the scope's
// hourly budget for that resource is exhausted. A ResourceKind with no
// configured budget is always allowed.
func (s *ScopeLimits) Allow(kind ResourceKind) error {
	s.mu.Lock()
	limiter, ok := s.limiters[kind]
	s.mu.Unlock()
	if !ok {
		return nil
	}
	if !limiter.Allow() {
		return fmt.Errorf("syscall: scope %q exceeded hourly %s budget of %d", s.scope, kind, s.budgets[kind])
	}
	return nil
}

// AllowN consumes n tokens of kind at once (e.g. an I/O request's byte
// count), returning an error if doing so would exceed the hourly budget.
func (s *ScopeLimits) AllowN(kind ResourceKind, n int) error {
	s.mu.Lock()
	limiter, ok := s.limiters[kind]
	s.mu.Unlock()
	if !ok {
		return nil
	}
	if !limiter.AllowN(time.Now(), n) {
		return fmt.Errorf("syscall: scope %q exceeded hourly %s budget of %d (requested %d)", s.scope, kind, s.budgets[kind], n)
	}
	return nil
}

// Scope returns the guard's owning scope name.
func (s *ScopeLimits) Scope() string {
	return s.scope
}
