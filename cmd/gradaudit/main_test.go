package main

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/gradaudit/gradaudit/internal/testutil"
)

func binaryName() string {
	if runtime.GOOS == "windows" {
		return "gradaudit.exe"
	}
	return "gradaudit"
}

// buildBinary compiles the CLI into a temp dir.
func buildBinary(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping binary build in short mode")
	}
	goBin, err := exec.LookPath("go")
	if err != nil {
		t.Skip("go toolchain not found")
	}

	binaryPath := filepath.Join(t.TempDir(), binaryName())
	build := exec.Command(goBin, "build", "-o", binaryPath, ".")
	if out, err := build.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build CLI: %v\n%s", err, out)
	}
	return binaryPath
}

func run(t *testing.T, binary, dir string, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	cmd := exec.Command(binary, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "NO_COLOR=1")
	var out, errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut

	err := cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		code = exitErr.ExitCode()
	default:
		t.Fatalf("failed to run %v: %v", args, err)
	}
	return out.String(), errOut.String(), code
}

func page(id string) string {
	return testutil.NewPage(id,
		testutil.WithMilestones(testutil.MarkerQualifier),
		testutil.WithCredits(18, 0),
		testutil.WithTerm("Fall 2020",
			testutil.Course("PHY", "661", 3, "NR"),
			testutil.Course("PHY", "662", 3, "NR"),
			testutil.Course("PHY", "731", 3, "NR"),
		),
	)
}

func TestCLI(t *testing.T) {
	binary := buildBinary(t)
	dir := t.TempDir()

	t.Run("version", func(t *testing.T) {
		out, _, code := run(t, binary, dir, "version")
		if code != 0 || !strings.Contains(out, "gradaudit version") {
			t.Errorf("version: code %d, output:\n%s", code, out)
		}
	})

	t.Run("help_shows_commands", func(t *testing.T) {
		out, _, _ := run(t, binary, dir, "--help")
		for _, name := range []string{"audit", "policy", "config", "version"} {
			if !strings.Contains(out, name) {
				t.Errorf("help missing command %s", name)
			}
		}
	})

	t.Run("clean_audit_exits_zero", func(t *testing.T) {
		transcripts := testutil.WriteFile(t, dir, "clean.txt", page("00123-4567"))
		out, stderr, code := run(t, binary, dir, "audit", "--term", "Fall 2020", "--format", "csv", transcripts)
		if code != 0 {
			t.Fatalf("exit code = %d, stderr:\n%s", code, stderr)
		}
		if !strings.Contains(out, "00123-4567") {
			t.Errorf("report missing student:\n%s", out)
		}
	})

	t.Run("failed_record_exits_one", func(t *testing.T) {
		transcripts := testutil.WriteFile(t, dir, "mixed.txt", testutil.JoinPages(
			page("00123-4567"),
			testutil.NewPage("00123-9999", testutil.WithoutSummary()),
		))
		_, stderr, code := run(t, binary, dir, "audit", "--term", "Fall 2020", "--format", "json", transcripts)
		if code != 1 {
			t.Errorf("exit code = %d, want 1", code)
		}
		if !strings.Contains(stderr, "Error: 0 records rejected, 1 failed") {
			t.Errorf("stderr = %q", stderr)
		}
	})

	t.Run("missing_term_exits_two", func(t *testing.T) {
		transcripts := testutil.WriteFile(t, dir, "noterm.txt", page("00123-4567"))
		_, stderr, code := run(t, binary, dir, "audit", transcripts)
		if code != 2 {
			t.Errorf("exit code = %d, want 2", code)
		}
		if !strings.Contains(stderr, "no term configured") {
			t.Errorf("stderr = %q", stderr)
		}
	})

	t.Run("env_file", func(t *testing.T) {
		envDir := t.TempDir()
		testutil.WriteFile(t, envDir, ".env", "GRADAUDIT_TERM=Fall 2020\nGRADAUDIT_FORMAT=csv\n")
		transcripts := testutil.WriteFile(t, envDir, "fall.txt", page("00123-4567"))

		out, stderr, code := run(t, binary, envDir, "audit", transcripts)
		if code != 0 {
			t.Fatalf("exit code = %d, stderr:\n%s", code, stderr)
		}
		if !strings.HasPrefix(out, "Source,Student ID") {
			t.Errorf(".env should select CSV output, got:\n%s", out)
		}
	})
}
