package trace

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waytrace/waytrace/internal/registry"
	"github.com/waytrace/waytrace/pkg/wire"
)

func parseLog(t *testing.T, log string) *wire.Trace {
	t.Helper()
	tr, err := NewBuilder().Parse(strings.NewReader(log))
	require.NoError(t, err)
	return tr
}

func TestParse_SingleEvent(t *testing.T) {
	tr := parseLog(t, "[1.500000] wl_display@1.sync(new id wl_callback@5)\n")

	require.Equal(t, 1, tr.Len())
	e := tr.Events[0]
	assert.Equal(t, int64(1_500_000), e.Time)
	assert.Equal(t, wire.DirectionFromPeer, e.Direction)
	assert.Equal(t, wire.ObjectRef{Class: "wl_display", Instance: 1, Generation: 1}, e.Object)
	assert.Equal(t, "sync", e.Method)
	assert.Equal(t, []wire.ObjectRef{{Class: "wl_callback", Instance: 5, Generation: 1}}, e.Created)
	assert.NotEmpty(t, tr.ID)
}

func TestParse_SendMarkerSetsDirection(t *testing.T) {
	tr := parseLog(t, "[1.000000] -> wl_display@1.get_registry(new id wl_registry@2)\n")
	assert.Equal(t, wire.DirectionToPeer, tr.Events[0].Direction)
}

func TestParse_IdReuseBumpsGeneration(t *testing.T) {
	log := strings.Join([]string{
		"[1.000000] wl_display@1.sync(new id wl_surface@3)",
		"[1.100000] wl_display@1.delete_id(3)",
		"[1.200000] wl_display@1.sync(new id wl_surface@3)",
	}, "\n")
	tr := parseLog(t, log)

	require.Equal(t, 3, tr.Len())
	assert.Equal(t, uint32(1), tr.Events[0].Created[0].Generation)
	assert.Equal(t, []wire.ObjectRef{{Class: "wl_surface", Instance: 3, Generation: 1}},
		tr.Events[1].Destroyed)
	assert.Equal(t, uint32(2), tr.Events[2].Created[0].Generation)
}

func TestParse_RegistryBindRecoversClass(t *testing.T) {
	log := strings.Join([]string{
		"[0.100000] -> wl_display@1.get_registry(new id wl_registry@2)",
		`[0.200000] -> wl_registry@2.bind(1, "wl_shm", 1, new id [unknown]@7)`,
	}, "\n")
	tr := parseLog(t, log)

	require.Equal(t, 2, tr.Len())
	assert.Equal(t, []wire.ObjectRef{{Class: "wl_shm", Instance: 7, Generation: 1}},
		tr.Events[1].Created)
}

func TestParse_ServerAllocatedIdsRecycleSilently(t *testing.T) {
	// Ids >= 0xff000000 are reused without delete_id lines; the second
	// create must not fail, and the generation count still advances.
	log := strings.Join([]string{
		"[1.000000] wl_display@1.sync(new id wl_data_offer@4278190080)",
		"[2.000000] wl_display@1.sync(new id wl_data_offer@4278190080)",
	}, "\n")
	tr := parseLog(t, log)

	require.Equal(t, 2, tr.Len())
	assert.Equal(t, uint32(1), tr.Events[0].Created[0].Generation)
	assert.Equal(t, uint32(2), tr.Events[1].Created[0].Generation)
}

func TestParse_DeleteIdZeroIsIgnored(t *testing.T) {
	tr := parseLog(t, "[1.000000] wl_display@1.delete_id(0)\n")
	assert.Empty(t, tr.Events[0].Destroyed)
}

func TestParse_ConnectionsAreIndependent(t *testing.T) {
	// The same instance id lives separately per connection tag.
	log := strings.Join([]string{
		"<a> [1.000000] wl_display@1.sync(new id wl_callback@3)",
		"<b> [1.100000] wl_display@1.sync(new id wl_callback@3)",
	}, "\n")
	tr := parseLog(t, log)

	require.Equal(t, 2, tr.Len())
	assert.Equal(t, "a", tr.Events[0].Connection)
	assert.Equal(t, "b", tr.Events[1].Connection)
	assert.Equal(t, uint32(1), tr.Events[0].Created[0].Generation)
	assert.Equal(t, uint32(1), tr.Events[1].Created[0].Generation)
}

func TestParse_SkipsNoiseAndCountsMalformed(t *testing.T) {
	log := strings.Join([]string{
		"libwayland: some chatter",
		"",
		"[1.000000] wl_display@1.sync(new id wl_callback@5)",
		"[bogus.stamp] wl_display@1.sync(x)",
	}, "\n")
	tr := parseLog(t, log)

	assert.Equal(t, 1, tr.Len())
	assert.Equal(t, 1, tr.Skipped)
}

func TestParse_AbortsOnFirstRegistryError(t *testing.T) {
	log := strings.Join([]string{
		"[1.000000] wl_display@1.sync(new id wl_callback@5)",
		"[1.100000] wl_surface@9.commit()",
	}, "\n")
	_, err := NewBuilder().Parse(strings.NewReader(log))

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 2, perr.Line)
	assert.ErrorIs(t, err, registry.ErrUnknownInstance)
}

func TestParse_AbortsOnWrongClass(t *testing.T) {
	_, err := NewBuilder().Parse(strings.NewReader("[1.000000] wl_compositor@1.sync()\n"))

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 1, perr.Line)
	assert.ErrorIs(t, err, registry.ErrWrongClass)
}

func TestParse_GraveyardReferenceSucceeds(t *testing.T) {
	// A line referencing a destroyed object resolves via the graveyard and
	// keeps the destroyed handle's generation.
	log := strings.Join([]string{
		"[1.000000] wl_display@1.sync(new id wl_callback@5)",
		"[1.100000] wl_display@1.delete_id(5)",
		"[1.200000] wl_callback@5.done(12345)",
	}, "\n")
	tr := parseLog(t, log)

	require.Equal(t, 3, tr.Len())
	assert.Equal(t, wire.ObjectRef{Class: "wl_callback", Instance: 5, Generation: 1},
		tr.Events[2].Object)
}

func TestParse_EmptyInput(t *testing.T) {
	tr := parseLog(t, "")
	assert.Equal(t, 0, tr.Len())
	assert.Equal(t, 0, tr.Skipped)
}

func TestParseError_Unwrap(t *testing.T) {
	inner := registry.ErrDuplicateInstance
	err := &ParseError{Line: 7, Err: inner}
	assert.Equal(t, "parse error at line 7: instance already exists", err.Error())
	assert.True(t, errors.Is(err, inner))
}
