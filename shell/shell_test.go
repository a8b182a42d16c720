package shell

import (
	"strings"
	"testing"
)

func TestDispatchUnknownCommand(t *testing.T) {
	s := New()
	out := s.Dispatch("nope")
	if !strings.Contains(out, "unknown command") {
		t.Fatalf("Dispatch(nope) = %q, want an unknown-command message", out)
	}
}

func TestDispatchEmptyLineReturnsEmpty(t *testing.T) {
	s := New()
	if out := s.Dispatch("   "); out != "" {
		t.Fatalf("Dispatch(blank) = %q, want empty string", out)
	}
}

func TestDispatchRoutesToHandlerWithArgs(t *testing.T) {
	s := New()
	var gotArgs []string
	s.Register("echo", "ECHO", func(args []string) (Output, error) {
		gotArgs = args
		return Output{Text: strings.Join(args, ",")}, nil
	})

	out := s.Dispatch("echo a b c")
	if out != "a,b,c" {
		t.Fatalf("Dispatch(echo a b c) = %q, want %q", out, "a,b,c")
	}
	if len(gotArgs) != 3 {
		t.Fatalf("gotArgs = %v, want 3 elements", gotArgs)
	}
}

func TestDispatchStripsJSONFlag(t *testing.T) {
	s := New()
	s.Register("ping", "PING", func(args []string) (Output, error) {
		return Output{Text: "pong", JSON: map[string]string{"reply": "pong"}}, nil
	})

	out := s.Dispatch("ping --json")
	if !strings.Contains(out, `"reply"`) {
		t.Fatalf("Dispatch(ping --json) = %q, want JSON reply", out)
	}
	if strings.Contains(out, "--json") {
		t.Fatalf("--json flag leaked into output: %q", out)
	}
}

func TestDispatchHandlerErrorUsesComponentTag(t *testing.T) {
	s := New()
	s.Register("boom", "BOOM", func(args []string) (Output, error) {
		return Output{}, errFixture{"kaboom"}
	})

	out := s.Dispatch("boom")
	if !strings.HasPrefix(out, "[BOOM] ") {
		t.Fatalf("Dispatch(boom) = %q, want [BOOM] prefix", out)
	}
}

func TestDispatchHandlerErrorJSONEnvelope(t *testing.T) {
	s := New()
	s.Register("boom", "BOOM", func(args []string) (Output, error) {
		return Output{}, errFixture{"kaboom"}
	})

	out := s.Dispatch("boom --json")
	for _, field := range []string{`"status"`, `"title"`, `"detail"`, `"error_type"`} {
		if !strings.Contains(out, field) {
			t.Errorf("json error envelope missing %s: %q", field, out)
		}
	}
}

func TestTokenizeHonorsQuotedSpans(t *testing.T) {
	fields, jsonOut := tokenize(`whatif '{"a": 1}' --json`)
	if jsonOut != true {
		t.Fatalf("jsonOut = false, want true")
	}
	if len(fields) != 2 || fields[1] != `{"a": 1}` {
		t.Fatalf("fields = %v, want [whatif {\"a\": 1}]", fields)
	}
}

func TestCommandsSorted(t *testing.T) {
	s := New()
	s.Register("zeta", "", func(args []string) (Output, error) { return Output{}, nil })
	s.Register("alpha", "", func(args []string) (Output, error) { return Output{}, nil })

	cmds := s.Commands()
	if cmds[0] != "alpha" || cmds[1] != "zeta" {
		t.Fatalf("Commands() = %v, want sorted [alpha zeta]", cmds)
	}
}

type errFixture struct{ msg string }

func (e errFixture) Error() string { return e.msg }
