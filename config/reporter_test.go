package config

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readArchive(t *testing.T, path string) map[string]string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("failed to open report: %v", err)
	}
	defer zr.Close()

	out := make(map[string]string)
	for _, f := range zr.File {
		r, err := f.Open()
		if err != nil {
			t.Fatalf("failed to open %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(r)
		r.Close()
		if err != nil {
			t.Fatalf("failed to read %s: %v", f.Name, err)
		}
		out[f.Name] = string(data)
	}
	return out
}

func TestReport_Archive(t *testing.T) {
	dir := t.TempDir()
	conf := ReporterConfig{Destination: filepath.Join(dir, "report.zip")}

	r, err := conf.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	stored := filepath.Join(dir, "input.yaml")
	if err := os.WriteFile(stored, []byte("components: []"), 0644); err != nil {
		t.Fatal(err)
	}
	r.Store("input/input.yaml", stored)
	r.Store("missing", filepath.Join(dir, "absent.txt"))
	r.StoreData("dump/button.txt", []byte("component Button"))
	r.StoreData("dump/button.txt", []byte("component Button again"))

	if r.Name() != conf.Destination {
		t.Errorf("Name() = %q, want %q", r.Name(), conf.Destination)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	files := readArchive(t, conf.Destination)
	if files["input/input.yaml"] != "components: []" {
		t.Errorf("stored file content = %q", files["input/input.yaml"])
	}
	if files["dump/button.txt"] != "component Button" {
		t.Errorf("stored data = %q", files["dump/button.txt"])
	}
	if _, ok := files["missing"]; ok {
		t.Error("absent files must be skipped")
	}
	var versioned int
	for name := range files {
		if strings.HasPrefix(name, "dump/button.txt-") {
			versioned++
		}
	}
	if versioned != 1 {
		t.Errorf("repeated data must be versioned, got %v", files)
	}
	if !strings.Contains(files["MANIFEST"], "input/input.yaml") {
		t.Errorf("manifest:\n%s", files["MANIFEST"])
	}
}

func TestReport_OverwritePanics(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	r.Store("a", "one")
	r.Store("a", "one")

	defer func() {
		if recover() == nil {
			t.Error("expected panic on conflicting store")
		}
	}()
	r.Store("a", "two")
}

func TestReport_Nil(t *testing.T) {
	var r *Report
	r.Store("a", "b")
	r.StoreData("a", nil)
	if r.Name() != "" {
		t.Error("nil report has no name")
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close on nil report should not error, got: %v", err)
	}
}
