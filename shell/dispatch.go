package shell

import "strings"

// tokenize splits line on whitespace, honoring single/double-quoted spans
// (needed for `autoctl whatif '<json>'`), and reports whether a `--json`
// flag was present, stripping it from the returned fields.
func tokenize(line string) (fields []string, jsonOut bool) {
	var cur strings.Builder
	var inField bool
	var quote byte

	flush := func() {
		if inField {
			fields = append(fields, cur.String())
			cur.Reset()
			inField = false
		}
	}

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
				continue
			}
			cur.WriteByte(c)
			inField = true
		case c == '\'' || c == '"':
			quote = c
			inField = true
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			flush()
		default:
			cur.WriteByte(c)
			inField = true
		}
	}
	flush()

	out := fields[:0]
	for _, f := range fields {
		if f == "--json" {
			jsonOut = true
			continue
		}
		out = append(out, f)
	}
	return out, jsonOut
}
