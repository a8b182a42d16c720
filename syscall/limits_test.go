package syscall

import "testing"

func TestScopeLimitsAllowsWithinBudget(t *testing.T) {
	l := NewScopeLimits("test-driver", map[ResourceKind]int{ResourceSyscalls: 10})
	for i := 0; i < 10; i++ {
		if err := l.Allow(ResourceSyscalls); err != nil {
			t.Fatalf("Allow() call %d: %v", i, err)
		}
	}
}

func TestScopeLimitsRejectsOverBudget(t *testing.T) {
	l := NewScopeLimits("test-driver", map[ResourceKind]int{ResourceSyscalls: 2})
	l.Allow(ResourceSyscalls)
	l.Allow(ResourceSyscalls)
	if err := l.Allow(ResourceSyscalls); err == nil {
		t.Fatalf("Allow() past budget: want error, got nil")
	}
}

func TestScopeLimitsUnconfiguredResourceAlwaysAllowed(t *testing.T) {
	l := NewScopeLimits("test-driver", map[ResourceKind]int{ResourceSyscalls: 1})
	for i := 0; i < 1000; i++ {
		if err := l.Allow(ResourceIOBytes); err != nil {
			t.Fatalf("Allow(unconfigured resource) call %d: %v", i, err)
		}
	}
}

func TestScopeLimitsAllowNRejectsBurstBeyondBudget(t *testing.T) {
	l := NewScopeLimits("test-driver", map[ResourceKind]int{ResourceIOBytes: 100})
	if err := l.AllowN(ResourceIOBytes, 200); err == nil {
		t.Fatalf("AllowN(200) over a 100-budget: want error, got nil")
	}
}

func TestScopeName(t *testing.T) {
	l := NewScopeLimits("net-rx", nil)
	if l.Scope() != "net-rx" {
		t.Fatalf("Scope() = %q, want net-rx", l.Scope())
	}
}
