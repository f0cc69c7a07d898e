// Package grammar parses single lines of a Wayland debug log into raw call
// records. It is purely lexical: object identity resolution happens later,
// in the trace builder.
package grammar

import (
	"regexp"
	"strconv"
	"strings"
)

// Outcome classifies one input line.
type Outcome int

const (
	// NotARecord means the line is not protocol text at all (noise, blank,
	// continuation output). Not an error; such lines are skipped.
	NotARecord Outcome = iota

	// Malformed means the line looked like a record (outer skeleton) but
	// failed detailed capture. Also skipped, but counted by the builder.
	Malformed

	// Parsed means a Record was produced.
	Parsed
)

// Record is the raw, unresolved capture of one log line. Instance ids in a
// Record still need to be resolved against the identity registry.
type Record struct {
	Connection string
	Queue      string
	Send       bool // "->" marker present: message sent to the compositor
	Time       int64
	Class      string
	Instance   uint32
	Method     string
	Arguments  []string
}

// Two log dialects exist: with or without the <connection> and {queue} tags,
// and with '#' or '@' separating class and instance. One grammar with
// explicitly-checked optional slots covers both.
// https://regex101.com/r/8yVF1H/3
var lineRE = regexp.MustCompile(
	`^(?:<(?P<connection>[^>]+)> )?\[ *(?P<sec>\d+)\.(?P<usec>\d+)\] +(?:\{(?P<queue>[^}]+)\})? *(?P<send>->)? *(?P<class>\w+)[#@](?P<instance>\d+)\.(?P<method>\w+)\((?P<args>.*)\)$`)

var (
	idxConnection = lineRE.SubexpIndex("connection")
	idxSec        = lineRE.SubexpIndex("sec")
	idxUsec       = lineRE.SubexpIndex("usec")
	idxQueue      = lineRE.SubexpIndex("queue")
	idxSend       = lineRE.SubexpIndex("send")
	idxClass      = lineRE.SubexpIndex("class")
	idxInstance   = lineRE.SubexpIndex("instance")
	idxMethod     = lineRE.SubexpIndex("method")
	idxArgs       = lineRE.SubexpIndex("args")
)

// ParseLine converts one text line into a Record. Lines that don't start
// with '[' or '<' and end with ')' are classified NotARecord immediately.
func ParseLine(line string) (*Record, Outcome) {
	if (!strings.HasPrefix(line, "<") && !strings.HasPrefix(line, "[")) || !strings.HasSuffix(line, ")") {
		return nil, NotARecord
	}

	m := lineRE.FindStringSubmatch(line)
	if m == nil {
		return nil, Malformed
	}

	sec, err := strconv.ParseInt(m[idxSec], 10, 64)
	if err != nil {
		return nil, Malformed
	}
	usec, err := strconv.ParseInt(m[idxUsec], 10, 64)
	if err != nil {
		return nil, Malformed
	}
	instance, err := strconv.ParseUint(m[idxInstance], 10, 32)
	if err != nil {
		return nil, Malformed
	}

	rec := &Record{
		Connection: m[idxConnection],
		Queue:      m[idxQueue],
		Send:       m[idxSend] != "",
		Time:       sec*1_000_000 + usec,
		Class:      m[idxClass],
		Instance:   uint32(instance),
		Method:     m[idxMethod],
		// Syntactic split only: arguments containing ", " inside nested
		// structures are not escaped by the log format.
		Arguments: strings.Split(m[idxArgs], ", "),
	}
	return rec, Parsed
}
