package convert

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"sc2sx/config"
	"sc2sx/report"
	"sc2sx/state"
)

// setupTestEnv creates a test environment with proper context and logger
func setupTestEnv(t *testing.T) (context.Context, *state.LocalEnv) {
	t.Helper()
	logger := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	cfg.Engine = *testEngineConfig()

	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)
	env.Log = logger
	env.Cfg = cfg
	env.Format = config.OutputFmtYaml
	return ctx, env
}

func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestIsInputFile(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"button.yaml", true},
		{"button.YML", true},
		{"button.stylex.yaml", false},
		{"button.stylex.txt", false},
		{"button.json", false},
	}
	for _, tt := range tests {
		if got := isInputFile(tt.name); got != tt.want {
			t.Errorf("isInputFile(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestCollectJobs(t *testing.T) {
	ctx, env := setupTestEnv(t)
	src := t.TempDir()
	single := writeInput(t, t.TempDir(), "single.yaml", sampleDocument)
	writeInput(t, src, "a.yaml", sampleDocument)
	writeInput(t, src, "nested/b.yml", sampleDocument)
	writeInput(t, src, "nested/b.stylex.yaml", "source: b.yml")
	writeInput(t, src, "notes.txt", "ignored")

	jobs, err := collectJobs(ctx, []string{src, single}, env, env.Log)
	if err != nil {
		t.Fatalf("collectJobs() error = %v", err)
	}
	var rels []string
	for _, j := range jobs {
		rels = append(rels, filepath.ToSlash(j.rel))
	}
	if got := strings.Join(rels, ","); got != "a.yaml,nested/b.yml,single.yaml" {
		t.Errorf("jobs = %s", got)
	}

	if _, err := collectJobs(ctx, []string{filepath.Join(src, "absent.yaml")}, env, env.Log); err == nil {
		t.Error("expected error for missing source")
	}

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := collectJobs(canceled, []string{src}, env, env.Log); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func writeArchive(t *testing.T, dir, name string, files map[string]string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	zw := zip.NewWriter(f)
	for _, n := range []string{"ui/button.yaml", "ui/button.stylex.yaml", "readme.md"} {
		content, ok := files[n]
		if !ok {
			continue
		}
		w, err := zw.Create(n)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCollectJobs_Archive(t *testing.T) {
	ctx, env := setupTestEnv(t)
	arc := writeArchive(t, t.TempDir(), "bundle.zip", map[string]string{
		"ui/button.yaml":        sampleDocument,
		"ui/button.stylex.yaml": "source: ui/button.yaml",
		"readme.md":             "ignored",
	})

	jobs, err := collectJobs(ctx, []string{arc}, env, env.Log)
	if err != nil {
		t.Fatalf("collectJobs() error = %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("jobs = %+v", jobs)
	}
	if got := filepath.ToSlash(jobs[0].rel); got != "bundle/ui/button.yaml" {
		t.Errorf("rel = %s", got)
	}
	if string(jobs[0].data) != sampleDocument {
		t.Error("archived document must be read in advance")
	}

	bad := writeInput(t, t.TempDir(), "bad.zip", "not an archive")
	if _, err := collectJobs(ctx, []string{bad}, env, env.Log); err == nil {
		t.Error("expected error for broken archive")
	}
}

func TestProcess_Archive(t *testing.T) {
	ctx, env := setupTestEnv(t)
	arc := writeArchive(t, t.TempDir(), "bundle.zip", map[string]string{"ui/button.yaml": sampleDocument})
	jobs, err := collectJobs(ctx, []string{arc}, env, env.Log)
	if err != nil {
		t.Fatal(err)
	}

	dst := t.TempDir()
	if err := process(ctx, jobs, dst, new(bytes.Buffer), env, env.Log); err != nil {
		t.Fatalf("process() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dst, "bundle", "ui", "button.stylex.yaml")); err != nil {
		t.Errorf("output was not written: %v", err)
	}
}

func TestProcess(t *testing.T) {
	ctx, env := setupTestEnv(t)
	src, dst := t.TempDir(), t.TempDir()
	env.Cfg.Output.Database = filepath.Join(t.TempDir(), "runs.db")

	jobs := []job{
		{path: writeInput(t, src, "ui/sample.yaml", sampleDocument), rel: filepath.FromSlash("ui/sample.yaml")},
		{path: writeInput(t, src, "broken.yaml", "components: []\n"), rel: "broken.yaml"},
	}

	out := new(bytes.Buffer)
	err := process(ctx, jobs, dst, out, env, env.Log)
	if err == nil || !strings.Contains(err.Error(), "broken.yaml") {
		t.Fatalf("expected error for broken document, got %v", err)
	}

	data, rerr := os.ReadFile(filepath.Join(dst, "ui", "sample.stylex.yaml"))
	if rerr != nil {
		t.Fatalf("output was not written: %v", rerr)
	}
	if !strings.Contains(string(data), "color: !ref colors.brand") {
		t.Errorf("unexpected output:\n%s", data)
	}

	if got := out.String(); !strings.Contains(got, "ui/sample.yaml: 2 converted, 1 left unconverted\n  class-selector: 1") {
		t.Errorf("summary = %q", got)
	}

	db, err := report.Open(env.Cfg.Output.Database, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	runs, err := db.Runs()
	if err != nil || len(runs) != 1 || runs[0].Sources != 2 || runs[0].Finished.IsZero() {
		t.Fatalf("runs = %+v, %v", runs, err)
	}
	reasons, err := db.Reasons(runs[0].ID)
	if err != nil || reasons["class-selector"] != 1 {
		t.Errorf("reasons = %v, %v", reasons, err)
	}
}

func TestProcess_Overwrite(t *testing.T) {
	ctx, env := setupTestEnv(t)
	env.NoDirs = true
	src, dst := t.TempDir(), t.TempDir()
	jobs := []job{{path: writeInput(t, src, "sample.yaml", sampleDocument), rel: "sample.yaml"}}

	if err := process(ctx, jobs, dst, new(bytes.Buffer), env, env.Log); err != nil {
		t.Fatalf("first run error = %v", err)
	}
	if err := process(ctx, jobs, dst, new(bytes.Buffer), env, env.Log); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("expected existing output error, got %v", err)
	}

	env.Overwrite = true
	env.Format = config.OutputFmtDump
	if err := process(ctx, jobs, dst, new(bytes.Buffer), env, env.Log); err != nil {
		t.Fatalf("dump run error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dst, "sample.stylex.txt")); err != nil {
		t.Errorf("dump output missing: %v", err)
	}
	if err := process(ctx, jobs, dst, new(bytes.Buffer), env, env.Log); err != nil {
		t.Errorf("overwrite run error = %v", err)
	}
}

func TestProcess_SameOutput(t *testing.T) {
	for _, overwrite := range []bool{false, true} {
		ctx, env := setupTestEnv(t)
		env.NoDirs = true
		env.Overwrite = overwrite
		env.Cfg.Engine.Workers = 2
		src, dst := t.TempDir(), t.TempDir()
		jobs := []job{
			{path: writeInput(t, src, "a/button.yaml", sampleDocument), rel: filepath.FromSlash("a/button.yaml")},
			{path: writeInput(t, src, "b/button.yaml", sampleDocument), rel: filepath.FromSlash("b/button.yaml")},
		}

		err := process(ctx, jobs, dst, new(bytes.Buffer), env, env.Log)
		if errs := multierr.Errors(err); len(errs) != 1 || !strings.Contains(errs[0].Error(), "is already produced from") {
			t.Errorf("overwrite=%v: expected single conflict error, got %v", overwrite, err)
		}
		if _, err := os.Stat(filepath.Join(dst, "button.stylex.yaml")); err != nil {
			t.Errorf("overwrite=%v: output missing: %v", overwrite, err)
		}
	}
}

func TestWriteOutput(t *testing.T) {
	name := filepath.Join(t.TempDir(), "button.stylex.yaml")

	if err := writeOutput(name, []byte("first"), false); err != nil {
		t.Fatalf("writeOutput() error = %v", err)
	}
	if err := writeOutput(name, []byte("second"), false); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("expected existing output error, got %v", err)
	}
	if data, _ := os.ReadFile(name); string(data) != "first" {
		t.Errorf("existing output was replaced: %q", data)
	}

	if err := writeOutput(name, []byte("new"), true); err != nil {
		t.Fatalf("writeOutput() with overwrite error = %v", err)
	}
	if data, _ := os.ReadFile(name); string(data) != "new" {
		t.Errorf("output = %q", data)
	}
}

func TestOutputClaims(t *testing.T) {
	c := newOutputClaims()
	if err := c.claim("out/x.stylex.yaml", "a/x.yaml"); err != nil {
		t.Fatal(err)
	}
	if err := c.claim("out/y.stylex.yaml", "a/y.yaml"); err != nil {
		t.Fatal(err)
	}
	err := c.claim("out/x.stylex.yaml", "b/x.yaml")
	if err == nil || !strings.Contains(err.Error(), "a/x.yaml") {
		t.Errorf("expected conflict naming first source, got %v", err)
	}
}

func TestProcess_Report(t *testing.T) {
	ctx, env := setupTestEnv(t)
	env.NoDirs = true
	rptName := filepath.Join(t.TempDir(), "report.zip")
	rpt, err := (&config.ReporterConfig{Destination: rptName}).Prepare()
	if err != nil {
		t.Fatal(err)
	}
	env.Rpt = rpt

	src, dst := t.TempDir(), t.TempDir()
	jobs := []job{{path: writeInput(t, src, "sample.yaml", sampleDocument), rel: "sample.yaml"}}
	if err := process(ctx, jobs, dst, new(bytes.Buffer), env, env.Log); err != nil {
		t.Fatalf("process() error = %v", err)
	}
	if err := rpt.Close(); err != nil {
		t.Fatal(err)
	}
	if fi, err := os.Stat(rptName); err != nil || fi.Size() == 0 {
		t.Errorf("report archive was not written: %v", err)
	}
}

func TestProcess_Canceled(t *testing.T) {
	ctx, env := setupTestEnv(t)
	src := t.TempDir()
	jobs := []job{{path: writeInput(t, src, "sample.yaml", sampleDocument), rel: "sample.yaml"}}

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	err := process(canceled, jobs, t.TempDir(), new(bytes.Buffer), env, env.Log)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
