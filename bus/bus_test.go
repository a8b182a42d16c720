package bus

import "testing"

func TestBusEmptyGetAll(t *testing.T) {
	b := New()
	if got := b.GetAll(); len(got) != 0 {
		t.Fatalf("GetAll on empty bus = %d entries, want 0", len(got))
	}
}

func TestBusChronologicalOrder(t *testing.T) {
	b := New()

	b.Publish(Message{Kind: MemoryHealthy, TimestampUS: 1000, HeadroomPercent: 50})
	b.Publish(Message{Kind: CommandQuiet, TimestampUS: 2000, IdleSeconds: 10})

	got := b.GetAll()
	if len(got) != 2 {
		t.Fatalf("len(GetAll()) = %d, want 2", len(got))
	}
	if got[0].TimestampUS != 1000 || got[1].TimestampUS != 2000 {
		t.Fatalf("messages out of chronological order: %+v", got)
	}
}

// TestBusOverflowKeepsNewest mirrors original_source's test_message_overflow:
// publishing 40 messages into a 32-capacity ring retains only the last 32,
// oldest-overwritten, starting at message #8.
func TestBusOverflowKeepsNewest(t *testing.T) {
	b := New()

	for i := uint64(0); i < 40; i++ {
		b.Publish(Message{Kind: MemoryHealthy, TimestampUS: i, HeadroomPercent: uint8(i)})
	}

	got := b.GetAll()
	if len(got) != Capacity {
		t.Fatalf("len(GetAll()) = %d, want %d", len(got), Capacity)
	}
	if got[0].TimestampUS != 8 {
		t.Fatalf("oldest retained timestamp = %d, want 8", got[0].TimestampUS)
	}
	if got[len(got)-1].TimestampUS != 39 {
		t.Fatalf("newest retained timestamp = %d, want 39", got[len(got)-1].TimestampUS)
	}
}

// TestGetSince mirrors original_source's test_get_since.
func TestGetSince(t *testing.T) {
	b := New()

	for i := uint64(0); i < 10; i++ {
		b.Publish(Message{Kind: MemoryHealthy, TimestampUS: i * 1000, HeadroomPercent: uint8(i)})
	}

	recent := b.GetSince(5000)
	if len(recent) != 4 {
		t.Fatalf("len(GetSince(5000)) = %d, want 4", len(recent))
	}
	for _, m := range recent {
		if m.TimestampUS <= 5000 {
			t.Fatalf("GetSince returned a message at or before the cutoff: %+v", m)
		}
	}
}

func TestBusStatsPerFamilyCounters(t *testing.T) {
	b := New()

	b.Publish(Message{Kind: MemoryPressure, TimestampUS: 1, Level: 80, Confidence: 900})
	b.Publish(Message{Kind: SchedulingLoadHigh, TimestampUS: 2, DeadlineMisses: 3, Confidence: 700})
	b.Publish(Message{Kind: CommandQuiet, TimestampUS: 3, IdleSeconds: 5})
	b.Publish(Message{Kind: CommandRapidStream, TimestampUS: 4, CommandsPerSec: 12, Confidence: 850})

	s := b.Stats()
	if s.TotalPublished != 4 {
		t.Fatalf("TotalPublished = %d, want 4", s.TotalPublished)
	}
	if s.MemoryMsgs != 1 || s.SchedulingMsgs != 1 || s.CommandMsgs != 2 {
		t.Fatalf("family counters = %+v, want memory=1 sched=1 cmd=2", s)
	}
	if s.CurrentCount != 4 {
		t.Fatalf("CurrentCount = %d, want 4", s.CurrentCount)
	}
}

func TestKindFamilyAndConfidenceClassification(t *testing.T) {
	cases := []struct {
		kind       Kind
		wantFamily Family
		wantConf   bool
	}{
		{MemoryPressure, FamilyMemory, true},
		{MemoryHealthy, FamilyMemory, false},
		{SchedulingLoadLow, FamilyScheduling, false},
		{SchedulingCriticalOperatorLatency, FamilyScheduling, true},
		{CommandLowAccuracy, FamilyCommand, false},
		{CommandHeavyPredicted, FamilyCommand, true},
	}

	for _, c := range cases {
		if got := c.kind.Family(); got != c.wantFamily {
			t.Errorf("%s.Family() = %s, want %s", c.kind, got, c.wantFamily)
		}
		if got := c.kind.HasConfidence(); got != c.wantConf {
			t.Errorf("%s.HasConfidence() = %v, want %v", c.kind, got, c.wantConf)
		}
	}
}

func TestClearResetsBus(t *testing.T) {
	b := New()
	b.Publish(Message{Kind: MemoryHealthy, TimestampUS: 1})
	b.Clear()

	if got := b.GetAll(); len(got) != 0 {
		t.Fatalf("GetAll after Clear = %d entries, want 0", len(got))
	}
	if s := b.Stats(); s.TotalPublished != 0 {
		t.Fatalf("Stats after Clear = %+v, want zero value", s)
	}
}
