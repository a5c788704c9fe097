package assets

import (
	"embed"
	"strings"
)

//go:embed countries.json schema.sql
var FS embed.FS

// Countries returns the bundled country fixture (JSON array).
func Countries() ([]byte, error) {
	return FS.ReadFile("countries.json")
}

// SchemaStatements returns the content schema split into single statements,
// with comment lines and blanks removed.
func SchemaStatements() ([]string, error) {
	b, err := FS.ReadFile("schema.sql")
	if err != nil {
		return nil, err
	}
	var lines []string
	for _, l := range strings.Split(string(b), "\n") {
		s := strings.TrimSpace(l)
		if s == "" || strings.HasPrefix(s, "--") {
			continue
		}
		lines = append(lines, s)
	}
	var out []string
	for _, stmt := range strings.Split(strings.Join(lines, "\n"), ";") {
		if s := strings.TrimSpace(stmt); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}
