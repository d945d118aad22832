package preflight_test

import (
	"os"
	"path/filepath"
	"testing"

	"ampliflow/internal/preflight"
	"ampliflow/internal/testsupport"
)

func TestCheckDirectoryAccess(t *testing.T) {
	dir := t.TempDir()
	result := preflight.CheckDirectoryAccess("work directory", dir)
	if !result.Passed {
		t.Fatalf("writable directory failed: %+v", result)
	}

	result = preflight.CheckDirectoryAccess("work directory", filepath.Join(dir, "absent"))
	if result.Passed {
		t.Fatal("missing directory passed")
	}

	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	result = preflight.CheckDirectoryAccess("work directory", file)
	if result.Passed {
		t.Fatal("plain file passed as directory")
	}
}

func TestCheckAllIncludesToolsAndDirectories(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	results := preflight.CheckAll(cfg, "")
	names := map[string]bool{}
	for _, r := range results {
		names[r.Name] = true
	}
	for _, want := range []string{"output directory", "work directory", "artic", "seqkit", "nextclade"} {
		if !names[want] {
			t.Fatalf("check %q missing from %v", want, names)
		}
	}

	ok, missing := preflight.RequiredToolsAvailable()
	if ok {
		t.Fatal("tools should be missing with an empty PATH")
	}
	if len(missing) != 2 {
		t.Fatalf("missing = %v, want the two required tools", missing)
	}
}
