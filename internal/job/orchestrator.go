package job

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/idelchi/treecrypt/internal/encryption"
	"github.com/idelchi/treecrypt/internal/filter"
	"github.com/idelchi/treecrypt/internal/keys"
	"github.com/idelchi/treecrypt/internal/logging"
	"github.com/idelchi/treecrypt/internal/walker"
)

var (
	// ErrBusy is returned when a job is started while another one runs on the same Orchestrator.
	ErrBusy = errors.New("a job is already running")
	// ErrInvalidRequest is returned for requests that cannot describe a job.
	ErrInvalidRequest = errors.New("invalid job request")
)

// Request describes one job.
type Request struct {
	// Source is the root of the tree to transform.
	Source string
	// Destination is the root the transformed tree is written to.
	Destination string
	// Mode is the direction, fixed for the whole job.
	Mode encryption.Mode
	// KeyBits requests a freshly generated key. Encryption only.
	KeyBits int
	// Key is an existing key. The job takes ownership and erases it when it ends;
	// pass a Clone to keep using the key afterwards.
	Key *keys.Key
}

// Plan is a discovered file resolved against the destination root.
type Plan struct {
	Source         string
	Destination    string
	DestinationDir string
}

// NewPlan maps entry onto destRoot.
func NewPlan(entry walker.Entry, destRoot string) Plan {
	dst := filepath.Join(destRoot, entry.Rel)

	return Plan{
		Source:         entry.Path,
		Destination:    dst,
		DestinationDir: filepath.Dir(dst),
	}
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithObserver registers an observer for every job.
func WithObserver(observer Observer) Option {
	return func(o *Orchestrator) {
		o.observers = append(o.observers, observer)
	}
}

// WithSuite selects the encryption suite.
func WithSuite(suite encryption.Suite) Option {
	return func(o *Orchestrator) {
		o.suite = suite
	}
}

// WithFilter restricts the files a job processes.
func WithFilter(flt *filter.Filter) Option {
	return func(o *Orchestrator) {
		o.filter = flt
	}
}

// WithPreserveTimestamps copies source modification times onto the outputs.
func WithPreserveTimestamps(preserve bool) Option {
	return func(o *Orchestrator) {
		o.preserveTimestamps = preserve
	}
}

// Orchestrator runs jobs one at a time. Independent Orchestrators share no state.
type Orchestrator struct {
	log                *slog.Logger
	observers          []Observer
	suite              encryption.Suite
	filter             *filter.Filter
	preserveTimestamps bool

	busy atomic.Bool
}

// New creates an Orchestrator. A nil logger discards job logs.
func New(log *slog.Logger, opts ...Option) *Orchestrator {
	if log == nil {
		log = logging.Discard()
	}

	orchestrator := &Orchestrator{
		log:   log,
		suite: encryption.DefaultSuite,
	}

	for _, opt := range opts {
		opt(orchestrator)
	}

	return orchestrator
}

// Start validates req and runs the job on a new goroutine.
func (o *Orchestrator) Start(req Request) (*Handle, error) {
	if err := req.validate(); err != nil {
		req.Key.Erase()

		return nil, err
	}

	if !o.busy.CompareAndSwap(false, true) {
		req.Key.Erase()

		return nil, ErrBusy
	}

	handle := newHandle(uuid.NewString())

	go o.run(handle, req)

	return handle, nil
}

// Run starts the job and blocks until it ends, returning its outcome.
// The job itself still runs on its own goroutine.
func (o *Orchestrator) Run(req Request) Outcome {
	handle, err := o.Start(req)
	if err != nil {
		return Outcome{Err: err}
	}

	return handle.Wait()
}

func (req Request) validate() error {
	switch {
	case req.Source == "" || req.Destination == "":
		return fmt.Errorf("%w: source and destination are required", ErrInvalidRequest)
	case req.Key == nil && req.KeyBits == 0:
		return fmt.Errorf("%w: either a key or a key length is required", ErrInvalidRequest)
	case req.Key != nil && req.KeyBits != 0:
		return fmt.Errorf("%w: key and key length are mutually exclusive", ErrInvalidRequest)
	case req.Key == nil && req.Mode == encryption.Decrypt:
		return fmt.Errorf("%w: decryption needs an existing key", ErrInvalidRequest)
	case req.Mode != encryption.Encrypt && req.Mode != encryption.Decrypt:
		return fmt.Errorf("%w: unknown %s", ErrInvalidRequest, req.Mode)
	}

	return nil
}

//nolint:funlen // linear job script
func (o *Orchestrator) run(handle *Handle, req Request) {
	start := time.Now()
	log := o.log.With("job", handle.ID(), "mode", req.Mode.String())

	var (
		outcome = Outcome{JobID: handle.ID()}
		key     = req.Key
	)

	defer func() {
		key.Erase()

		outcome.Progress = handle.Progress()
		outcome.Duration = time.Since(start)

		o.finish(handle, log, outcome)
	}()

	fail := func(path string, err error) {
		outcome.Err = err
		outcome.FailedPath = path

		o.transition(handle, log, Failed)
	}

	log.Info("job started", "source", req.Source, "destination", req.Destination, "filtered", !o.filter.Empty())

	if key == nil {
		generated, err := keys.Generate(req.KeyBits)
		if err != nil {
			fail("", err)

			return
		}

		key = generated
		outcome.Key = generated.Clone()
	}

	engine, err := encryption.NewEngine(key,
		encryption.WithSuite(o.suite),
		encryption.WithPreserveTimestamps(o.preserveTimestamps),
	)
	if err != nil {
		fail("", err)

		return
	}

	log.Debug("engine ready", "suite", engine.Suite(), "key", key.String())

	source, destination, err := resolveRoots(req.Source, req.Destination)
	if err != nil {
		fail("", err)

		return
	}

	o.transition(handle, log, Enumerating)

	entries, err := walker.Collect(walker.Walk(source, walker.WithFilter(o.filter)))
	if err != nil {
		var walkErr *walker.WalkError

		path := source
		if errors.As(err, &walkErr) {
			path = walkErr.Path
		}

		fail(path, err)

		return
	}

	handle.total.Store(int64(len(entries)))
	log.Debug("enumerated", "files", len(entries))

	o.transition(handle, log, Processing)

	if len(entries) > 0 {
		o.progress(handle)
	}

	for i, entry := range entries {
		plan := NewPlan(entry, destination)

		size, err := engine.Transform(plan.Source, plan.Destination, req.Mode)
		if err != nil {
			fail(plan.Source, err)

			return
		}

		outcome.Bytes += size

		handle.completed.Store(int64(i + 1))
		log.Debug("file done", "file", entry.Rel, "bytes", size, "progress", handle.Progress().Fraction())

		o.progress(handle)
	}

	if len(entries) == 0 {
		o.progress(handle)
	}

	o.transition(handle, log, Completed)
}

func (o *Orchestrator) transition(handle *Handle, log *slog.Logger, state State) {
	handle.state.Store(int32(state))
	log.Debug("state", "state", state.String())

	for _, observer := range o.observers {
		observer.OnState(handle.ID(), state)
	}
}

func (o *Orchestrator) progress(handle *Handle) {
	current := handle.Progress()

	handle.publish(current)

	for _, observer := range o.observers {
		observer.OnProgress(handle.ID(), current)
	}
}

func (o *Orchestrator) finish(handle *Handle, log *slog.Logger, outcome Outcome) {
	if outcome.Success() {
		log.Info("job completed",
			"files", outcome.Progress.Completed, "bytes", outcome.Bytes, "duration", outcome.Duration)
	} else {
		log.Error("job failed", "file", outcome.FailedPath,
			"completed", outcome.Progress.Completed, "total", outcome.Progress.Total, "error", outcome.Err)
	}

	handle.outcome = outcome

	for _, observer := range o.observers {
		observer.OnOutcome(outcome)
	}

	close(handle.updates)
	o.busy.Store(false)
	close(handle.done)
}

// resolveRoots makes both roots absolute and rejects a destination inside the source,
// which would make the job walk its own output.
func resolveRoots(source, destination string) (string, string, error) {
	src, err := filepath.Abs(source)
	if err != nil {
		return "", "", fmt.Errorf("%w: resolving source: %w", ErrInvalidRequest, err)
	}

	dst, err := filepath.Abs(destination)
	if err != nil {
		return "", "", fmt.Errorf("%w: resolving destination: %w", ErrInvalidRequest, err)
	}

	rel, err := filepath.Rel(src, dst)
	outside := rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))

	if err == nil && !outside {
		return "", "", fmt.Errorf("%w: destination %q lies inside source %q", ErrInvalidRequest, dst, src)
	}

	return src, dst, nil
}
