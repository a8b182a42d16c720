package supervisor

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sis-kernel/sisk/boot"
)

func newTestProcessForHTTP(t *testing.T) *Process {
	t.Helper()
	p, err := NewProcess(Config{QEMUPath: "/bin/true"})
	if err != nil {
		t.Fatalf("NewProcess: %v", err)
	}
	return p
}

func TestHandleStatusReportsInitialState(t *testing.T) {
	p := newTestProcessForHTTP(t)
	srv := httptest.NewServer(p.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/v1/status")
	if err != nil {
		t.Fatalf("GET /v1/status: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /v1/status: status = %d, want 200", resp.StatusCode)
	}

	var got statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decoding status response: %v", err)
	}
	if got.ShellReady {
		t.Fatalf("ShellReady = true on a fresh Process")
	}
	if got.BootComplete {
		t.Fatalf("BootComplete = true on a fresh Process")
	}
	if got.MarkersSeen != 0 {
		t.Fatalf("MarkersSeen = %d, want 0", got.MarkersSeen)
	}
	if got.MarkersTotal != len(boot.Sequence()) {
		t.Fatalf("MarkersTotal = %d, want %d", got.MarkersTotal, len(boot.Sequence()))
	}
}

func TestHandleMarkersReflectsStatus(t *testing.T) {
	p := newTestProcessForHTTP(t)
	p.status.MarkSeen(boot.KernelEntered)

	srv := httptest.NewServer(p.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/v1/markers")
	if err != nil {
		t.Fatalf("GET /v1/markers: %v", err)
	}
	defer resp.Body.Close()

	var got []markerStatus
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decoding markers response: %v", err)
	}
	if len(got) != len(boot.Sequence()) {
		t.Fatalf("len(markers) = %d, want %d", len(got), len(boot.Sequence()))
	}
	if !got[0].Seen {
		t.Fatalf("first marker (KernelEntered) Seen = false, want true")
	}
	if got[0].Name != boot.KernelEntered.Substring() {
		t.Fatalf("first marker Name = %q, want %q", got[0].Name, boot.KernelEntered.Substring())
	}
	for _, m := range got[1:] {
		if m.Seen {
			t.Fatalf("marker %q unexpectedly Seen", m.Name)
		}
	}
}

func TestHandleCommandRejectsEmptyCommand(t *testing.T) {
	p := newTestProcessForHTTP(t)
	srv := httptest.NewServer(p.Router())
	defer srv.Close()

	body, _ := json.Marshal(commandRequest{Command: ""})
	resp, err := http.Post(srv.URL+"/v1/command", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /v1/command: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("POST /v1/command (empty): status = %d, want 400", resp.StatusCode)
	}

	var got errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decoding error response: %v", err)
	}
	if got.ErrorType != "invalid_request" {
		t.Fatalf("ErrorType = %q, want invalid_request", got.ErrorType)
	}
}

func TestHandleCommandRejectsMalformedJSON(t *testing.T) {
	p := newTestProcessForHTTP(t)
	srv := httptest.NewServer(p.Router())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/v1/command", "application/json", bytes.NewReader([]byte("{not json")))
	if err != nil {
		t.Fatalf("POST /v1/command: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("POST /v1/command (malformed): status = %d, want 400", resp.StatusCode)
	}
}
