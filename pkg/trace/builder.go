package trace

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/google/uuid"

	"github.com/waytrace/waytrace/internal/grammar"
	"github.com/waytrace/waytrace/internal/registry"
	"github.com/waytrace/waytrace/pkg/logging"
	"github.com/waytrace/waytrace/pkg/wire"
)

// Ids at or above this are allocated by the server, which recycles them
// without a delete_id call ever appearing in the log.
const serverIDBase = 0xff000000

// deleteIDMethod is the lifecycle event that retires an object id.
const deleteIDMethod = "delete_id"

// ParseError is the single terminal failure of a parse: the first registry
// error, tagged with the 1-based line number it occurred on.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Builder parses debug logs into traces. A Builder is reusable but not safe
// for concurrent use; each Parse call gets its own connection registry, so
// separate Builders may parse separate logs concurrently.
type Builder struct {
	log *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the diagnostic logger.
func WithLogger(log *slog.Logger) Option {
	return func(b *Builder) { b.log = log }
}

// NewBuilder returns a Builder with the given options applied.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{log: logging.Nop()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Open parses the log file at path with a default Builder.
func Open(path string) (*wire.Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer f.Close()
	return NewBuilder().Parse(f)
}

// Parse reads the input line by line and returns the complete trace, or a
// *ParseError for the first unrecoverable registry failure. Non-record and
// malformed lines are skipped, never fatal.
func (b *Builder) Parse(r io.Reader) (*wire.Trace, error) {
	t := &wire.Trace{ID: uuid.NewString()}
	conns := registry.NewConnections(b.log)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for sc.Scan() {
		line++
		rec, outcome := grammar.ParseLine(sc.Text())
		switch outcome {
		case grammar.NotARecord:
			continue
		case grammar.Malformed:
			t.Skipped++
			continue
		}

		ev, err := b.resolve(conns, rec)
		if err != nil {
			return nil, &ParseError{Line: line, Err: err}
		}
		t.Events = append(t.Events, ev)
	}
	if err := sc.Err(); err != nil {
		return nil, &ParseError{Line: line, Err: fmt.Errorf("read log: %w", err)}
	}

	b.log.Debug("trace built", "trace", t.ID,
		"events", len(t.Events), "skipped", t.Skipped, "connections", conns.Len())
	return t, nil
}

// resolve turns a raw record into a fully resolved event, applying lifecycle
// side effects to the record's connection table.
func (b *Builder) resolve(conns *registry.Connections, rec *grammar.Record) (*wire.Event, error) {
	table := conns.Table(rec.Connection)

	actor, err := table.Resolve(rec.Class, rec.Instance)
	if err != nil {
		return nil, err
	}

	direction := wire.DirectionFromPeer
	if rec.Send {
		direction = wire.DirectionToPeer
	}

	ev := &wire.Event{
		Time:       rec.Time,
		Direction:  direction,
		Connection: rec.Connection,
		Queue:      rec.Queue,
		Object:     actor,
		Method:     rec.Method,
		Arguments:  rec.Arguments,
	}

	for _, arg := range rec.Arguments {
		ref, ok := grammar.ParseNewID(arg)
		if !ok {
			continue
		}
		class := rec.NewIDClass(ref.Class)
		if class != ref.Class {
			b.log.Debug("recovered bound interface name",
				"class", class, "instance", ref.Instance)
		}
		if ref.Instance >= serverIDBase {
			table.DestroyIfExists(ref.Instance)
		}
		created, err := table.Create(class, ref.Instance)
		if err != nil {
			return nil, err
		}
		ev.Created = append(ev.Created, created)
	}

	if rec.Method == deleteIDMethod && len(rec.Arguments) == 1 {
		if id, err := strconv.ParseUint(rec.Arguments[0], 10, 32); err == nil && id != 0 {
			destroyed, err := table.Destroy(uint32(id))
			if err != nil {
				return nil, err
			}
			ev.Destroyed = append(ev.Destroyed, destroyed)
		}
	}

	return ev, nil
}
