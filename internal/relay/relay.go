// Package relay forwards text lines from a source to a sink, admitting at
// most a fixed number of lines per fixed time window and discarding the rest.
//
// A Relay is single-threaded. Run blocks on reading the next line and does
// no work in between; it returns on end of input or on the first I/O error.
package relay

import (
	"bufio"
	"fmt"
	"io"
	"time"
)

// WriteBufferPolicy names the behaviour requested when the output buffer is
// full. It is accepted for compatibility and not consulted by the relay.
type WriteBufferPolicy string

// WriteBufferBlock is the default write buffer policy.
const WriteBufferBlock WriteBufferPolicy = "block"

// Config is fixed for the lifetime of a run.
type Config struct {
	// Limit is the maximum number of lines admitted per window. Zero means
	// unlimited.
	Limit uint64

	// Window is the window length in whole seconds. Zero rolls the window
	// before every line.
	Window uint64

	// Verbose reports every discarded line to the diagnostics sink.
	Verbose bool

	WriteBuffer WriteBufferPolicy
}

// DefaultConfig mirrors the command line defaults.
func DefaultConfig() Config {
	return Config{
		Limit:       0,
		Window:      1,
		WriteBuffer: WriteBufferBlock,
	}
}

// Decision is the outcome for a single line.
type Decision int

const (
	Admit Decision = iota
	Discard
)

func (d Decision) String() string {
	switch d {
	case Admit:
		return "admit"
	case Discard:
		return "discard"
	default:
		return fmt.Sprintf("decision(%d)", int(d))
	}
}

// Observer is notified of relay events. Implementations must not block.
type Observer interface {
	LineRead()
	WindowRolled()
	LineAdmitted()
	LineDiscarded()
}

type nopObserver struct{}

func (nopObserver) LineRead()      {}
func (nopObserver) WindowRolled()  {}
func (nopObserver) LineAdmitted()  {}
func (nopObserver) LineDiscarded() {}

// Stats summarises a run.
type Stats struct {
	LinesRead uint64
	Admitted  uint64
	Discarded uint64
	// Windows counts every window started, including the first.
	Windows uint64
}

// Relay holds the window state for a single run.
type Relay struct {
	cfg      Config
	clock    func() time.Time
	observer Observer

	window Window
	stats  Stats
}

// Option configures a Relay.
type Option func(*Relay)

// WithClock replaces time.Now.
func WithClock(clock func() time.Time) Option {
	return func(r *Relay) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// WithObserver registers an observer for relay events.
func WithObserver(o Observer) Option {
	return func(r *Relay) {
		if o != nil {
			r.observer = o
		}
	}
}

// New creates a relay for cfg.
func New(cfg Config, opts ...Option) *Relay {
	r := &Relay{
		cfg:      cfg,
		clock:    time.Now,
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Config returns the relay configuration.
func (r *Relay) Config() Config {
	return r.cfg
}

// Stats returns counters for the most recent run.
func (r *Relay) Stats() Stats {
	return r.stats
}

// Window returns the current window.
func (r *Relay) Window() Window {
	return r.window
}

// Run copies lines from in to out until in is exhausted. Admitted lines are
// written verbatim, terminator included, and flushed one at a time. When
// verbose, discarded lines are reported to diag as
// "DISCARD:<admitted>/<limit>:<line>" with no added framing.
//
// End of input returns nil. Any read, write or flush failure returns an
// *IOError.
func (r *Relay) Run(in io.Reader, out io.Writer, diag io.Writer) error {
	src := bufio.NewReader(in)
	sink, ok := out.(*bufio.Writer)
	if !ok {
		sink = bufio.NewWriter(out)
	}
	if diag == nil {
		diag = io.Discard
	}

	r.window = newWindow(r.clock())
	r.stats = Stats{Windows: 1}

	for {
		line, err := src.ReadString('\n')
		if err != nil && err != io.EOF {
			return &IOError{Op: OpRead, Err: err}
		}
		if line == "" {
			return nil
		}

		if perr := r.process(line, sink, diag); perr != nil {
			return perr
		}

		if err == io.EOF {
			return nil
		}
	}
}

func (r *Relay) process(line string, sink *bufio.Writer, diag io.Writer) error {
	r.stats.LinesRead++
	r.observer.LineRead()

	if r.decide(r.clock()) == Discard {
		r.stats.Discarded++
		r.observer.LineDiscarded()
		if r.cfg.Verbose {
			if _, err := fmt.Fprintf(diag, "DISCARD:%d/%d:%s", r.window.Admitted(), r.cfg.Limit, line); err != nil {
				return &IOError{Op: OpDiagnostic, Err: err}
			}
		}
		return nil
	}

	r.stats.Admitted++
	r.observer.LineAdmitted()
	if _, err := sink.WriteString(line); err != nil {
		return &IOError{Op: OpWrite, Err: err}
	}
	if err := sink.Flush(); err != nil {
		return &IOError{Op: OpFlush, Err: err}
	}
	return nil
}

// decide rolls the window if due and then admits or discards one line
// observed at now. An admitted line is counted against the window.
func (r *Relay) decide(now time.Time) Decision {
	if r.window.roll(now, r.cfg.Window) {
		r.stats.Windows++
		r.observer.WindowRolled()
	}

	if r.cfg.Limit > 0 && r.window.Admitted() >= r.cfg.Limit {
		return Discard
	}

	r.window.admit()
	return Admit
}
