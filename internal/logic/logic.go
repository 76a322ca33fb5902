// Package logic wires configuration, key resolution, the job orchestrator and terminal output.
package logic

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"golang.org/x/sync/errgroup"

	"github.com/idelchi/treecrypt/internal/config"
	"github.com/idelchi/treecrypt/internal/encryption"
	"github.com/idelchi/treecrypt/internal/filter"
	"github.com/idelchi/treecrypt/internal/job"
	"github.com/idelchi/treecrypt/internal/keys"
	"github.com/idelchi/treecrypt/internal/logging"
	"github.com/idelchi/treecrypt/internal/walker"
)

// Streams are the terminal handles the commands read from and write to.
type Streams struct {
	In  *os.File
	Out io.Writer
	Err io.Writer
}

// Run executes one encryption or decryption job described by cfg.
func Run(cfg *config.Config, streams Streams) error {
	log, err := logging.New(streams.Err, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}

	suite, err := encryption.ParseSuite(cfg.Suite)
	if err != nil {
		return err
	}

	flt, err := buildFilter(cfg)
	if err != nil {
		return err
	}

	if cfg.Dry {
		return dryRun(cfg, flt, streams)
	}

	key, err := resolveKey(cfg, streams.In, streams.Err)
	if err != nil {
		return err
	}

	req := job.Request{
		Source:      cfg.Source,
		Destination: cfg.Destination,
		Mode:        mode(cfg),
		Key:         key,
	}

	if key == nil {
		req.KeyBits = cfg.KeyLength
	}

	const stateBuffer = 8

	states := make(chan job.State, stateBuffer)

	orchestrator := job.New(log,
		job.WithSuite(suite),
		job.WithFilter(flt),
		job.WithPreserveTimestamps(cfg.PreserveTimestamps),
		job.WithObserver(job.ObserverFuncs{
			State: func(_ string, state job.State) {
				select {
				case states <- state:
				default:
				}
			},
		}),
	)

	handle, err := orchestrator.Start(req)
	if err != nil {
		return fmt.Errorf("starting job: %w", err)
	}

	var outcome job.Outcome

	group := errgroup.Group{}

	group.Go(func() error {
		outcome = handle.Wait()

		return nil
	})

	group.Go(func() error {
		return newRenderer(streams.Err, cfg.Quiet).run(states, handle.Updates())
	})

	// A broken terminal does not change the job outcome.
	if err := group.Wait(); err != nil {
		log.Warn("progress display failed", "error", err)
	}

	return report(cfg, streams, outcome)
}

func mode(cfg *config.Config) encryption.Mode {
	if cfg.Decrypt {
		return encryption.Decrypt
	}

	return encryption.Encrypt
}

// report prints the generated key, the outcome line and the stats.
func report(cfg *config.Config, streams Streams, outcome job.Outcome) error {
	defer outcome.Key.Erase()

	// Outputs already written are only recoverable with the generated key.
	if outcome.Key != nil && (outcome.Success() || outcome.Progress.Completed > 0) {
		fmt.Fprintln(streams.Out, outcome.Key.Hex())
	}

	if cfg.Stats {
		errored := 0
		if !outcome.Success() {
			errored = 1
		}

		printStats(streams.Err, outcome.Progress.Total, outcome.Progress.Completed, errored,
			outcome.Bytes, outcome.Duration)
	}

	if !outcome.Success() {
		fmt.Fprintln(streams.Err, color.RedString("✗")+" "+outcome.Message())

		return fmt.Errorf("%s job: %w", mode(cfg), outcome.Err)
	}

	if !cfg.Quiet {
		fmt.Fprintf(streams.Err, "%s %s %d file(s), %s into %q\n",
			color.GreenString("✓"), verb(cfg), outcome.Progress.Completed,
			humanize.IBytes(uint64(max(0, outcome.Bytes))), cfg.Destination) //nolint:gosec // clamped
	}

	return nil
}

func verb(cfg *config.Config) string {
	if cfg.Decrypt {
		return "Decrypted"
	}

	return "Encrypted"
}

// buildFilter merges flag patterns with the pattern files.
func buildFilter(cfg *config.Config) (*filter.Filter, error) {
	includes := append([]string{}, cfg.Include...)
	excludes := append([]string{}, cfg.Exclude...)

	if cfg.IncludeFrom != "" {
		patterns, err := filter.LoadPatterns(cfg.IncludeFrom)
		if err != nil {
			return nil, fmt.Errorf("loading include patterns: %w", err)
		}

		includes = append(includes, patterns...)
	}

	if cfg.ExcludeFrom != "" {
		patterns, err := filter.LoadPatterns(cfg.ExcludeFrom)
		if err != nil {
			return nil, fmt.Errorf("loading exclude patterns: %w", err)
		}

		excludes = append(excludes, patterns...)
	}

	flt, err := filter.New(includes, excludes)
	if err != nil {
		return nil, fmt.Errorf("building filter: %w", err)
	}

	return flt, nil
}

// dryRun lists what would be processed without touching the destination.
func dryRun(cfg *config.Config, flt *filter.Filter, streams Streams) error {
	start := time.Now()

	destination, err := filepath.Abs(cfg.Destination)
	if err != nil {
		return fmt.Errorf("resolving destination: %w", err)
	}

	var (
		files     int
		totalSize int64
	)

	for entry, err := range walker.Walk(cfg.Source, walker.WithFilter(flt)) {
		if err != nil {
			return fmt.Errorf("walking source: %w", err)
		}

		plan := job.NewPlan(entry, destination)
		files++

		if !cfg.Quiet {
			fmt.Fprintf(streams.Out, "Would %s %q -> %q\n", mode(cfg), plan.Source, plan.Destination)
		}

		if info, err := os.Stat(entry.Path); err == nil {
			totalSize += info.Size()
		}
	}

	if cfg.Stats {
		printStats(streams.Err, files, 0, 0, totalSize, time.Since(start))
	}

	return nil
}

// Keygen writes a fresh hex key of the given length to w.
func Keygen(w io.Writer, bits int) error {
	key, err := keys.Generate(bits)
	if err != nil {
		return err
	}

	defer key.Erase()

	_, err = fmt.Fprintln(w, key.Hex())

	return err
}

func printStats(w io.Writer, total, processed, errored int, totalSize int64, duration time.Duration) {
	var b strings.Builder

	fmt.Fprintf(&b, "\nStats\n")
	fmt.Fprintf(&b, "  Files:     %d\n", total)
	fmt.Fprintf(&b, "  Processed: %d\n", processed)
	fmt.Fprintf(&b, "  Errors:    %d\n", errored)
	//nolint:gosec // totalSize is always non-negative (sum of file sizes)
	fmt.Fprintf(&b, "  Size:      %s\n", humanize.IBytes(uint64(max(0, totalSize))))
	fmt.Fprintf(&b, "  Duration:  %s\n", duration.Round(time.Millisecond))

	io.WriteString(w, b.String()) //nolint:errcheck
}
