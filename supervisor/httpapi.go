package supervisor

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/sis-kernel/sisk/boot"
)

// errorResponse is the JSON error envelope section 7 specifies for
// user-visible failures: {status, title, detail, error_type}.
type errorResponse struct {
	Status    int    `json:"status"`
	Title     string `json:"title"`
	Detail    string `json:"detail,omitempty"`
	ErrorType string `json:"error_type"`
}

// writeError renders err as the section 7 JSON error envelope.
func writeError(w http.ResponseWriter, status int, errType, title string, err error) {
	resp := errorResponse{Status: status, Title: title, ErrorType: errType}
	if err != nil {
		resp.Detail = err.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// writeJSON renders v as a 200 JSON response.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// Router builds the HTTP/JSON control plane for p: boot/shell status, the
// command-execution RPC, and a snapshot of every boot.Marker observed so
// far. Modeled on canonical-snapd's gorilla/mux daemon router and its
// {status,title,detail,error_type} error-response convention.
func (p *Process) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/v1/status", p.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/v1/markers", p.handleMarkers).Methods(http.MethodGet)
	r.HandleFunc("/v1/command", p.handleCommand).Methods(http.MethodPost)
	return r
}

// statusResponse is the body of GET /v1/status.
type statusResponse struct {
	ShellReady   bool `json:"shell_ready"`
	BootComplete bool `json:"boot_complete"`
	MarkersSeen  int  `json:"markers_seen"`
	MarkersTotal int  `json:"markers_total"`
}

func (p *Process) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, statusResponse{
		ShellReady:   p.status.ShellActive(),
		BootComplete: p.status.Complete(),
		MarkersSeen:  p.status.Count(),
		MarkersTotal: len(boot.Sequence()),
	})
}

// markerStatus is one entry of GET /v1/markers.
type markerStatus struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Seen        bool   `json:"seen"`
}

func (p *Process) handleMarkers(w http.ResponseWriter, r *http.Request) {
	seq := boot.Sequence()
	out := make([]markerStatus, len(seq))
	for i, m := range seq {
		out[i] = markerStatus{
			Name:        m.Substring(),
			Description: m.Description(),
			Seen:        p.status.Seen(m),
		}
	}
	writeJSON(w, out)
}

// commandRequest is the body of POST /v1/command.
type commandRequest struct {
	Command   string `json:"command"`
	TimeoutMS int    `json:"timeout_ms,omitempty"`
}

func (p *Process) handleCommand(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed command request", err)
		return
	}
	if req.Command == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "command must not be empty", nil)
		return
	}

	timeout := defaultCommandTimeout
	if req.TimeoutMS > 0 {
		timeout = time.Duration(req.TimeoutMS) * time.Millisecond
	}

	result, err := p.ExecuteCommand(r.Context(), req.Command, timeout)
	if err != nil {
		if errors.Is(err, ErrCommandTimeout) {
			writeError(w, http.StatusGatewayTimeout, "command_timeout", "command timed out", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "command_failed", "command execution failed", err)
		return
	}

	writeJSON(w, result)
}
