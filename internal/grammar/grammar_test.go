package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		outcome Outcome
		want    Record
	}{
		{
			name:    "plain dialect without connection or queue",
			line:    "[1.500000] wl_display@1.sync(new id wl_callback@5)",
			outcome: Parsed,
			want: Record{
				Time:      1_500_000,
				Class:     "wl_display",
				Instance:  1,
				Method:    "sync",
				Arguments: []string{"new id wl_callback@5"},
			},
		},
		{
			name:    "full dialect with connection, queue, and send marker",
			line:    "<gtk4> [  12.000340] {display} -> wl_surface#6.commit()",
			outcome: Parsed,
			want: Record{
				Connection: "gtk4",
				Queue:      "display",
				Send:       true,
				Time:       12_000_340,
				Class:      "wl_surface",
				Instance:   6,
				Method:     "commit",
				Arguments:  []string{""},
			},
		},
		{
			name:    "legacy hash separator",
			line:    "[3.000001] wl_registry#2.global(1, \"wl_shm\", 1)",
			outcome: Parsed,
			want: Record{
				Time:      3_000_001,
				Class:     "wl_registry",
				Instance:  2,
				Method:    "global",
				Arguments: []string{"1", "\"wl_shm\"", "1"},
			},
		},
		{
			name:    "noise line is not a record",
			line:    "some compositor chatter",
			outcome: NotARecord,
		},
		{
			name:    "blank line is not a record",
			line:    "",
			outcome: NotARecord,
		},
		{
			name:    "candidate prefix without call suffix",
			line:    "[1.000000] wl_display@1.sync(",
			outcome: NotARecord,
		},
		{
			name:    "outer skeleton with garbage timestamp is malformed",
			line:    "[abc.def] wl_display@1.sync(x)",
			outcome: Malformed,
		},
		{
			name:    "outer skeleton without instance id is malformed",
			line:    "[1.000000] wl_display.sync(x)",
			outcome: Malformed,
		},
		{
			name:    "instance id overflowing uint32 is malformed",
			line:    "[1.000000] wl_display@99999999999.sync(x)",
			outcome: Malformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, outcome := ParseLine(tt.line)
			assert.Equal(t, tt.outcome, outcome)
			if tt.outcome != Parsed {
				assert.Nil(t, rec)
				return
			}
			require.NotNil(t, rec)
			assert.Equal(t, tt.want, *rec)
		})
	}
}

func TestParseLine_ArgumentSplitIsSyntactic(t *testing.T) {
	// The ", " split is not escape-aware; nested structures containing the
	// separator fall apart, matching the log format's own limitation.
	rec, outcome := ParseLine("[1.000002] wl_pointer@9.axis(2771.785, array[8])")
	require.Equal(t, Parsed, outcome)
	assert.Equal(t, []string{"2771.785", "array[8]"}, rec.Arguments)
}

func TestParseNewID(t *testing.T) {
	tests := []struct {
		name string
		arg  string
		want NewIDRef
		ok   bool
	}{
		{"at separator", "new id wl_callback@5", NewIDRef{Class: "wl_callback", Instance: 5}, true},
		{"hash separator", "new id wl_callback#5", NewIDRef{Class: "wl_callback", Instance: 5}, true},
		{"unknown class placeholder", "new id [unknown]@7", NewIDRef{Class: "[unknown]", Instance: 7}, true},
		{"not a new id argument", "wl_callback@5", NewIDRef{}, false},
		{"missing separator", "new id wl_callback", NewIDRef{}, false},
		{"unparsable instance", "new id wl_callback@x", NewIDRef{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseNewID(tt.arg)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewIDClass_RegistryBind(t *testing.T) {
	rec, outcome := ParseLine(`[0.200000] -> wl_registry@2.bind(1, "wl_shm", 1, new id [unknown]@7)`)
	require.Equal(t, Parsed, outcome)
	require.Len(t, rec.Arguments, 4)

	assert.Equal(t, "wl_shm", rec.NewIDClass("[unknown]"))

	// Only the exact 4-argument bind shape triggers the recovery.
	other, outcome := ParseLine(`[0.300000] -> wl_registry@2.bind(1, "wl_shm", new id [unknown]@8)`)
	require.Equal(t, Parsed, outcome)
	assert.Equal(t, "[unknown]", other.NewIDClass("[unknown]"))

	// A named class passes through untouched.
	assert.Equal(t, "wl_output", rec.NewIDClass("wl_output"))
}
