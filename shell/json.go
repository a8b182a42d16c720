package shell

import "encoding/json"

// ErrorEnvelope is the JSON error shape section 7 requires for shell
// responses: `{status, title, detail, error_type}`.
type ErrorEnvelope struct {
	Status    int    `json:"status"`
	Title     string `json:"title"`
	Detail    string `json:"detail"`
	ErrorType string `json:"error_type"`
}

// render formats a successful Output either as JSON (when jsonOut is set
// and Output.JSON is populated) or as the plain-text/METRIC/test-line
// rendering, falling back to Text for JSON mode if no structured payload
// was supplied.
func render(out Output, jsonOut bool) string {
	if jsonOut {
		payload := out.JSON
		if payload == nil {
			payload = map[string]string{"text": out.Text}
		}
		b, err := json.Marshal(payload)
		if err != nil {
			b, _ = json.Marshal(ErrorEnvelope{
				Status:    500,
				Title:     "encoding error",
				Detail:    err.Error(),
				ErrorType: "internal",
			})
		}
		return string(b)
	}

	var lines []string
	if out.Text != "" {
		lines = append(lines, out.Text)
	}
	for _, m := range out.Metrics {
		lines = append(lines, "METRIC "+m.Name+"="+m.Value)
	}
	for _, tl := range out.TestLines {
		lines = append(lines, "["+tl.Status+"] "+tl.Name)
	}
	return joinLines(lines)
}

func (s *Shell) renderError(command string, jsonOut bool, err error) string {
	if jsonOut {
		b, merr := json.Marshal(ErrorEnvelope{
			Status:    400,
			Title:     "command failed",
			Detail:    err.Error(),
			ErrorType: "command_error",
		})
		if merr != nil {
			return `{"status":500,"title":"encoding error","detail":"","error_type":"internal"}`
		}
		return string(b)
	}
	return "[" + s.componentTag(command) + "] " + err.Error()
}

func joinLines(lines []string) string {
	switch len(lines) {
	case 0:
		return ""
	case 1:
		return lines[0]
	}
	total := 0
	for _, l := range lines {
		total += len(l) + 1
	}
	buf := make([]byte, 0, total)
	for i, l := range lines {
		if i > 0 {
			buf = append(buf, '\n')
		}
		buf = append(buf, l...)
	}
	return string(buf)
}
