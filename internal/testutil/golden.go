package testutil

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"regexp"
	"testing"
)

var updateGolden = flag.Bool("update", false, "update golden files")

// Update returns true if golden files should be rewritten (go test -update).
func Update() bool {
	return *updateGolden
}

// Golden compares actual against testdata/<name>.golden. Line endings are
// normalized and ANSI escapes stripped before comparing, so report output
// matches regardless of platform or terminal.
func Golden(t *testing.T, name string, actual []byte) {
	t.Helper()

	actual = normalize(actual)
	goldenPath := filepath.Join("testdata", name+".golden")

	if Update() {
		if err := os.MkdirAll(filepath.Dir(goldenPath), 0755); err != nil {
			t.Fatalf("Failed to create testdata directory: %v", err)
		}
		if err := os.WriteFile(goldenPath, actual, 0644); err != nil {
			t.Fatalf("Failed to write golden file %s: %v", goldenPath, err)
		}
		t.Logf("Updated golden file: %s", goldenPath)
		return
	}

	expected, err := os.ReadFile(goldenPath)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("Golden file %s does not exist. Run with -update to create it.", goldenPath)
		}
		t.Fatalf("Failed to read golden file %s: %v", goldenPath, err)
	}

	if !bytes.Equal(actual, normalize(expected)) {
		t.Errorf("Output does not match golden file %s (run go test -update to accept).\n\nGot:\n%s\n\nWant:\n%s",
			goldenPath, actual, expected)
	}
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[A-Za-z]`)

// StripANSI removes ANSI escape codes.
func StripANSI(data []byte) []byte {
	return ansiPattern.ReplaceAll(data, nil)
}

// StripANSIString removes ANSI escape codes from a string.
func StripANSIString(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

func normalize(data []byte) []byte {
	return bytes.ReplaceAll(StripANSI(data), []byte("\r\n"), []byte("\n"))
}
