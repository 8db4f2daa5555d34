package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/ashita-ai/togi"
	"github.com/ashita-ai/togi/internal/config"
	"github.com/ashita-ai/togi/recordio"
	"github.com/ashita-ai/togi/validate"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(run0())
}

func run0() int {
	level := slog.LevelInfo
	if os.Getenv("TOGI_LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	// Logs go to stderr; stdout carries records for cat and new-study.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, logger); err != nil {
		slog.Error("fatal error", "error", err)
		return 1
	}
	return 0
}

func run(ctx context.Context, logger *slog.Logger) error {
	// Load .env file if present (non-fatal).
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	args := os.Args[1:]
	if len(args) == 0 {
		usage()
		return errors.New("no command given")
	}
	switch args[0] {
	case "check":
		return runCheck(ctx, logger, cfg, args[1:])
	case "cat":
		return runCat(cfg, args[1:])
	case "new-study":
		return runNewStudy(args[1:])
	case "version":
		fmt.Println(version)
		return nil
	case "help", "-h", "--help":
		usage()
		return nil
	default:
		usage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `togi works with study logs (one JSON record per line).

Usage:
  togi check [file ...]   decode and validate logs (stdin when no files)
  togi cat [file ...]     decode records and re-encode them to stdout
  togi new-study [id]     write a fresh study record skeleton to stdout
  togi version            print the build version`)
}

// runCheck validates every given log, files in parallel, and fails if any
// log had a problem.
func runCheck(ctx context.Context, logger *slog.Logger, cfg config.Config, files []string) error {
	if len(files) == 0 {
		problems, err := checkStream(logger, cfg, "stdin", os.Stdin)
		if err != nil {
			return err
		}
		if problems > 0 {
			return fmt.Errorf("found %d problems", problems)
		}
		logger.Info("log ok", "file", "stdin")
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.CheckConcurrency)
	var problems atomic.Int64
	for _, path := range files {
		path := path // per-iteration copy; required under go < 1.22
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			n, err := checkFile(logger, cfg, path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			problems.Add(int64(n))
			if n == 0 {
				logger.Info("log ok", "file", path)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if n := problems.Load(); n > 0 {
		return fmt.Errorf("found %d problems across %d files", n, len(files))
	}
	return nil
}

func checkFile(logger *slog.Logger, cfg config.Config, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return checkStream(logger, cfg, path, f)
}

// checkStream decodes and validates one log, logging every problem it
// finds. I/O failures come back as the error; malformed or inconsistent
// records only count as problems.
func checkStream(logger *slog.Logger, cfg config.Config, name string, f io.Reader) (int, error) {
	r := recordio.NewReaderSize(f, cfg.MaxLineBytes)
	log := validate.NewLog()
	problems := 0
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return problems, nil
		}
		if err != nil {
			if !togi.IsDecodeError(err) {
				return problems, err
			}
			problems++
			logger.Error("bad record", "file", name, "error", err)
			if cfg.FailFast {
				return problems, nil
			}
			continue
		}
		if err := log.Observe(rec); err != nil {
			problems++
			logger.Error("inconsistent record", "file", name, "error", err)
			if cfg.FailFast {
				return problems, nil
			}
		}
	}
}

// runCat decodes every record and re-encodes it to stdout, normalizing
// field order and formatting. The first malformed line aborts.
func runCat(cfg config.Config, files []string) error {
	out := bufio.NewWriter(os.Stdout)
	w := recordio.NewWriter(out)
	if len(files) == 0 {
		if err := catStream(w, cfg, os.Stdin); err != nil {
			return err
		}
	}
	for _, path := range files {
		if err := catFile(w, cfg, path); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	if err := out.Flush(); err != nil {
		return fmt.Errorf("flush stdout: %w", err)
	}
	return nil
}

func catFile(w *recordio.Writer, cfg config.Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return catStream(w, cfg, f)
}

func catStream(w *recordio.Writer, cfg config.Config, f io.Reader) error {
	r := recordio.NewReaderSize(f, cfg.MaxLineBytes)
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
}

// runNewStudy writes an empty study record to stdout. The id is generated
// unless one is given as the first argument.
func runNewStudy(args []string) error {
	id := togi.NewStudyID()
	if len(args) > 0 {
		id = args[0]
	}
	rec := &togi.StudyRecord{
		ID:     id,
		Attrs:  map[string]string{},
		Spans:  []togi.SpanDef{},
		Params: []togi.ParamDef{},
		Values: []togi.ValueDef{},
	}
	data, err := togi.Encode(rec)
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
