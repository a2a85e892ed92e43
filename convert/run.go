package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"sc2sx/archive"
	"sc2sx/config"
	"sc2sx/convert/stylex"
	"sc2sx/report"
	"sc2sx/state"
)

// job is a single input document. "rel" is the path relative to the
// processed directory (base file name for sources given directly). Documents
// found in archives are read in advance and kept in "data".
type job struct {
	path string
	rel  string
	data []byte
}

// fileResult is handed back by workers to the goroutine which owns report
// archive and database.
type fileResult struct {
	job
	components []string
	results    []*stylex.Result
	warnings   []string
	output     string
	dump       []byte
	err        error
}

func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("convert")

	if cmd.Args().Len() == 0 {
		return errors.New("no input source has been specified")
	}

	dst := cmd.String("out")
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}

	env.Format = env.Cfg.Output.Format
	if to := cmd.String("to"); len(to) > 0 {
		if env.Format, err = config.ParseOutputFmt(to); err != nil {
			log.Warn("Unknown output format requested, using configured one", zap.Error(err), zap.Stringer("format", env.Cfg.Output.Format))
			env.Format = env.Cfg.Output.Format
		}
	}
	env.NoDirs, env.Overwrite = cmd.Bool("nodirs"), cmd.Bool("overwrite")

	jobs, err := collectJobs(ctx, cmd.Args().Slice(), env, log)
	if err != nil {
		return err
	}

	log.Info("Processing starting", zap.Strings("sources", cmd.Args().Slice()), zap.String("destination", dst),
		zap.Stringer("format", env.Format), zap.Int("files", len(jobs)))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, jobs, dst, cmd.Root().Writer, env, log)
}

// collectJobs expands sources into the list of input documents. Directories
// are walked recursively, our own output files are skipped.
func collectJobs(ctx context.Context, sources []string, env *state.LocalEnv, log *zap.Logger) ([]job, error) {
	var jobs []job
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		src, err := filepath.Abs(src)
		if err != nil {
			return nil, err
		}
		fi, err := os.Stat(src)
		if err != nil {
			return nil, fmt.Errorf("input source was not found (%s): %w", src, err)
		}

		if fi.Mode().IsRegular() {
			if !archive.IsArchive(src) {
				jobs = append(jobs, job{path: src, rel: filepath.Base(src)})
				continue
			}
			found, err := archiveJobs(src, log)
			if err != nil {
				return nil, fmt.Errorf("unable to process archive: %w", err)
			}
			jobs = append(jobs, found...)
			continue
		}
		if !fi.IsDir() {
			return nil, fmt.Errorf("unexpected path mode for (%s)", src)
		}

		count := 0
		err = filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err != nil {
				log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
				return nil
			}
			if !info.Mode().IsRegular() || !isInputFile(path) {
				return nil
			}
			count++
			rel := strings.TrimPrefix(strings.TrimPrefix(path, src), string(filepath.Separator))
			jobs = append(jobs, job{path: path, rel: rel})
			return nil
		})
		if err != nil {
			return nil, err
		}
		if count == 0 {
			log.Debug("Nothing to process", zap.String("dir", src))
		}
	}
	return jobs, nil
}

// archiveJobs reads all input documents from zip archive. Output keeps them
// under directory named after the archive.
func archiveJobs(src string, log *zap.Logger) ([]job, error) {
	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))

	var jobs []job
	err := archive.Walk(src, "", isInputFile, func(e archive.Entry) error {
		data, err := e.Read()
		if err != nil {
			log.Warn("Skipping file in archive", zap.String("archive", e.Archive), zap.String("path", e.Name), zap.Error(err))
			return nil
		}
		jobs = append(jobs, job{
			path: src + "/" + e.Name,
			rel:  filepath.Join(base, filepath.FromSlash(e.Name)),
			data: data,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		log.Debug("Nothing to process", zap.String("archive", src))
	}
	return jobs, nil
}

func isInputFile(path string) bool {
	name := strings.ToLower(filepath.Base(path))
	for _, f := range []config.OutputFmt{config.OutputFmtYaml, config.OutputFmtDump} {
		if strings.HasSuffix(name, f.Ext()) {
			return false
		}
	}
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}

// process converts documents concurrently, at most engine.workers at a
// time. Results are consumed in source order. Failure of a single document
// does not stop others, all failures are returned together.
func process(ctx context.Context, jobs []job, dst string, out io.Writer, env *state.LocalEnv, log *zap.Logger) (err error) {
	if out == nil {
		out = os.Stdout
	}

	var (
		db    *report.DB
		runID uuid.UUID
	)
	if env.Cfg.Output.Database != "" {
		if db, err = report.Open(env.Cfg.Output.Database, log); err != nil {
			return err
		}
		if runID, err = db.BeginRun(time.Now(), len(jobs)); err != nil {
			return multierr.Append(err, db.Close())
		}
		defer func() {
			err = multierr.Combine(err, db.FinishRun(runID, time.Now()), db.Close())
		}()
		log.Debug("Recording run", zap.Stringer("run", runID), zap.String("database", env.Cfg.Output.Database))
	}

	adapter := NewTableAdapter(&env.Cfg.Engine)
	results := make([]fileResult, len(jobs))
	claims := newOutputClaims()

	workers := max(env.Cfg.Engine.Workers, 1)
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i := range jobs {
		if ctx.Err() != nil {
			results[i] = fileResult{job: jobs[i], err: ctx.Err()}
			continue
		}
		sem <- struct{}{}
		wg.Add(1)
		go func(i int) {
			defer func() {
				<-sem
				wg.Done()
			}()
			results[i] = convertFile(ctx, jobs[i], dst, adapter, claims, env, log)
		}(i)
	}
	wg.Wait()

	for i := range results {
		fr := &results[i]

		if fr.data != nil {
			env.Rpt.StoreData("input/"+filepath.ToSlash(fr.rel), fr.data)
		} else {
			env.Rpt.Store("input/"+filepath.ToSlash(fr.rel), fr.path)
		}
		if fr.err != nil {
			log.Error("Unable to process file", zap.String("file", fr.path), zap.Error(fr.err))
			err = multierr.Append(err, fmt.Errorf("%s: %w", fr.rel, fr.err))
			continue
		}
		if len(fr.dump) > 0 {
			env.Rpt.StoreData("dump/"+filepath.ToSlash(fr.rel)+".txt", fr.dump)
		}
		if db != nil {
			if er := db.Record(runID, filepath.ToSlash(fr.rel), fr.results); er != nil {
				err = multierr.Append(err, er)
			}
		}

		values := buildValues(config.SummaryTemplateFieldName, fr.rel, fr.components, fr.results, env.Format)
		values.Output = fr.output
		values.Warnings = fr.warnings
		summary, er := expandTemplate(config.SummaryTemplateFieldName, env.Cfg.Output.SummaryTemplate, values)
		if er != nil {
			log.Warn("Unable to prepare summary", zap.String("file", fr.rel), zap.Error(er))
			continue
		}
		if summary = strings.TrimSpace(summary); summary != "" {
			fmt.Fprintln(out, summary)
		}
	}
	return err
}

// convertFile handles single input document end to end: decoding, engine
// pass for every declaration and writing output.
func convertFile(ctx context.Context, j job, dst string, adapter *TableAdapter, claims *outputClaims, env *state.LocalEnv, log *zap.Logger) (fr fileResult) {
	fr.job = j

	log.Info("Conversion starting", zap.String("from", j.rel))
	defer func(start time.Time) {
		if r := recover(); r != nil {
			log.Error("Conversion ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.String("from", j.rel), zap.ByteString("stack", debug.Stack()))
			fr.err = fmt.Errorf("conversion panic: %v", r)
		} else if fr.err == nil {
			log.Info("Conversion completed", zap.Duration("elapsed", time.Since(start)), zap.String("to", fr.output))
		}
	}(time.Now())

	data := j.data
	if data == nil {
		var err error
		if data, err = os.ReadFile(j.path); err != nil {
			fr.err = err
			return
		}
	}
	doc, err := LoadDocument(bytes.NewReader(data))
	if err != nil {
		fr.err = err
		return
	}

	for _, c := range doc.Components {
		fr.components = append(fr.components, c.Name)
	}

	table, decls, warnings := doc.Declarations(j.rel, log)
	fr.warnings = warnings

	engine := stylex.NewEngine(log, table,
		stylex.WithAdapter(adapter),
		stylex.WithSiblingMarker(env.Cfg.Engine.SiblingMarker))
	if fr.results, err = engine.ConvertAll(ctx, decls); err != nil {
		fr.err = err
		return
	}

	values := buildValues(config.NameTemplateFieldName, j.rel, fr.components, fr.results, env.Format)
	fr.output = buildOutputPath(values, j.rel, dst, env)
	if fr.err = claims.claim(fr.output, j.rel); fr.err != nil {
		return
	}
	if fr.err = prepareOutput(fr.output, env, log); fr.err != nil {
		return
	}

	buf := new(bytes.Buffer)
	if fr.err = writeResults(buf, j.rel, fr.results, env.Format); fr.err != nil {
		return
	}
	if fr.err = writeOutput(fr.output, buf.Bytes(), env.Overwrite); fr.err != nil {
		return
	}

	if env.Rpt != nil {
		if env.Format == config.OutputFmtDump {
			fr.dump = buf.Bytes()
		} else {
			dump := new(bytes.Buffer)
			if err := writeResults(dump, j.rel, fr.results, config.OutputFmtDump); err == nil {
				fr.dump = dump.Bytes()
			}
		}
	}
	return
}

// outputClaims records output names taken during a run. Different inputs
// may map to the same output (with --nodirs or a name template), the first
// one to claim it wins even when overwriting is allowed.
type outputClaims struct {
	mu    sync.Mutex
	names map[string]string
}

func newOutputClaims() *outputClaims {
	return &outputClaims{names: make(map[string]string)}
}

func (c *outputClaims) claim(name, rel string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if other, ok := c.names[name]; ok {
		return fmt.Errorf("output file %s is already produced from %s", name, other)
	}
	c.names[name] = rel
	return nil
}

// prepareOutput makes sure output file can be written.
func prepareOutput(name string, env *state.LocalEnv, log *zap.Logger) error {
	if _, err := os.Stat(name); err == nil {
		if !env.Overwrite {
			return fmt.Errorf("output file already exists: %s", name)
		}
		log.Warn("Overwriting existing file", zap.String("file", name))
	} else if !os.IsNotExist(err) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(name), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	return nil
}

// writeOutput never replaces a file created after prepareOutput looked
// unless overwriting was requested.
func writeOutput(name string, data []byte, overwrite bool) (err error) {
	flags := os.O_CREATE | os.O_WRONLY
	if overwrite {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(name, flags, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("output file already exists: %s", name)
		}
		return err
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()
	_, err = f.Write(data)
	return err
}
