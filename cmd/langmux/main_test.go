package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestConfigInitAndValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	out, err := execute(t, "config", "init", "-p", path)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, path) {
		t.Errorf("init output missing path: %s", out)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("sample config not written: %v", err)
	}

	if _, err := execute(t, "config", "init", "-p", path); err == nil {
		t.Error("second init should refuse to overwrite")
	}

	out, err = execute(t, "config", "validate", "-p", path)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	if !strings.Contains(out, "Configuration valid") {
		t.Errorf("unexpected validate output: %s", out)
	}
}

func TestConfigValidateRejectsBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[logging]\nformat = \"xml\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, "config", "validate", "-p", path); err == nil {
		t.Error("expected validation failure for bad format")
	}
}

func TestPlanWithExplicitDuration(t *testing.T) {
	out, err := execute(t, "plan", "--duration", "1800", "-c", filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	for _, offset := range []string{"375", "825", "1200"} {
		if !strings.Contains(out, offset) {
			t.Errorf("plan output missing offset %s:\n%s", offset, out)
		}
	}
}

func TestPlanWithoutInputFails(t *testing.T) {
	if _, err := execute(t, "plan", "-c", filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("plan without a file or duration should fail")
	}
}
