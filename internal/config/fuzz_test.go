package config

import (
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

// FuzzConfigParse tests YAML config parsing with arbitrary input.
// It ensures that malformed YAML doesn't cause panics.
func FuzzConfigParse(f *testing.F) {
	f.Add(`gradaudit:
  term: Fall 2020
`)
	f.Add(`gradaudit:
  term: Spring 2021
  policy: policies/physics.yaml
  output:
    format: pdf
    path: reports/spring.pdf
`)
	f.Add(`gradaudit:
  roster:
    dsn: postgres://registrar@localhost/students?sslmode=disable
  log:
    level: debug
    format: json
`)
	f.Add(`gradaudit:
  roster: [not, a, map]
`)
	f.Add("")
	f.Add("---\n")
	f.Add(strings.Repeat("gradaudit:\n  ", 50))

	f.Fuzz(func(t *testing.T, input string) {
		config := DefaultConfig()
		if err := yaml.Unmarshal([]byte(input), config); err != nil {
			return
		}
		// Parsed configs must validate or fail cleanly
		_ = config.Validate()
		_ = config.RequireTerm()
	})
}

// FuzzConfigRoundTrip tests that valid configs survive serialization round trip.
func FuzzConfigRoundTrip(f *testing.F) {
	f.Add("Fall 2020", "policy.yaml", "roster.csv")
	f.Add("", "", "")
	f.Add("Spring 2021: Physics", "path/with spaces/policy.yaml", "#roster")
	f.Add("\"quoted\"", "- dash", "{braces}")

	f.Fuzz(func(t *testing.T, term, policy, roster string) {
		config := DefaultConfig()
		config.Gradaudit.Term = term
		config.Gradaudit.Policy = policy
		config.Gradaudit.Roster.File = roster

		data, err := yaml.Marshal(config)
		if err != nil {
			return
		}

		config2 := DefaultConfig()
		if err := yaml.Unmarshal(data, config2); err != nil {
			t.Fatalf("Failed to parse serialized config: %v", err)
		}

		if config2.Gradaudit.Term != config.Gradaudit.Term {
			t.Errorf("Term: got %q, want %q", config2.Gradaudit.Term, config.Gradaudit.Term)
		}
		if config2.Gradaudit.Policy != config.Gradaudit.Policy {
			t.Errorf("Policy: got %q, want %q", config2.Gradaudit.Policy, config.Gradaudit.Policy)
		}
		if config2.Gradaudit.Roster.File != config.Gradaudit.Roster.File {
			t.Errorf("Roster: got %q, want %q", config2.Gradaudit.Roster.File, config.Gradaudit.Roster.File)
		}
	})
}

// FuzzResolvePath tests relative path resolution.
func FuzzResolvePath(f *testing.F) {
	f.Add("policy.yaml", "/project")
	f.Add("/absolute/path/policy.yaml", "/project")
	f.Add("", "/project")
	f.Add("path with spaces/roster.csv", "/project/with spaces")
	f.Add(strings.Repeat("a/", 100)+"policy.yaml", "/project")

	f.Fuzz(func(t *testing.T, path, baseDir string) {
		result := resolve(baseDir, path)

		if path == "" && result != "" {
			t.Errorf("Empty path resolved to %q", result)
		}
		if len(path) > 0 && path[0] == '/' && result != path {
			t.Errorf("Absolute path not preserved: got %q, want %q", result, path)
		}
	})
}
