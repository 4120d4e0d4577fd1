package csvdiff

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// simpleDiff flattens a DiffRecord to comparable values, since the
// Record/Deleted/Added pointers themselves are not meaningful to assert on.
type simpleDiff struct {
	Kind             string
	Fields           []string
	Line             int
	DeletedFields    []string
	DeletedLine      int
	AddedFields      []string
	AddedLine        int
	DifferingColumns []int
}

func fieldsOf(r *ByteRecord) []string {
	if r == nil {
		return nil
	}
	out := make([]string, r.Len())
	for i := range out {
		f, _ := r.Field(i)
		out[i] = string(f)
	}
	return out
}

func simplify(d DiffRecord) simpleDiff {
	return simpleDiff{
		Kind:             d.Kind.String(),
		Fields:           fieldsOf(d.Record),
		Line:             d.Line,
		DeletedFields:    fieldsOf(d.Deleted),
		DeletedLine:      d.DeletedLine,
		AddedFields:      fieldsOf(d.Added),
		AddedLine:        d.AddedLine,
		DifferingColumns: d.DifferingColumns,
	}
}

func sortSimpleDiffs(out []simpleDiff) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return strings.Join(out[i].Fields, ",")+strings.Join(out[i].DeletedFields, ",") <
			strings.Join(out[j].Fields, ",")+strings.Join(out[j].DeletedFields, ",")
	})
}

func simplifyAll(records []DiffRecord) []simpleDiff {
	out := make([]simpleDiff, len(records))
	for i, d := range records {
		out[i] = simplify(d)
	}
	sortSimpleDiffs(out)
	return out
}

// swapSides maps one side's DiffRecord onto what the opposite-order diff
// (right compared against left) should produce for the same key: Add and
// Delete trade places, and a Modify's deleted/added halves trade places,
// with the same differing-column set (bytes.Equal is symmetric, so which
// side is "deleted" vs. "added" cannot change which columns differ).
func swapSides(d simpleDiff) simpleDiff {
	switch d.Kind {
	case "Add":
		return simpleDiff{Kind: "Delete", Fields: d.Fields, Line: d.Line}
	case "Delete":
		return simpleDiff{Kind: "Add", Fields: d.Fields, Line: d.Line}
	case "Modify":
		return simpleDiff{
			Kind:             "Modify",
			DeletedFields:    d.AddedFields,
			DeletedLine:      d.AddedLine,
			AddedFields:      d.DeletedFields,
			AddedLine:        d.DeletedLine,
			DifferingColumns: d.DifferingColumns,
		}
	default:
		return d
	}
}

func runStreamingDiff(t *testing.T, left, right string, opts ...Option) *DiffRecordSet {
	t.Helper()
	d, err := NewBuilder(opts...).Build()
	require.NoError(t, err)

	it, err := d.Diff(context.Background(), NewSource(strings.NewReader(left)), NewSource(strings.NewReader(right)))
	require.NoError(t, err)

	set, err := Collect(it)
	require.NoError(t, err)
	return set
}

func TestDiffSingleRowModify(t *testing.T) {
	// S1
	set := runStreamingDiff(t, "id,a,b\n1,x,y", "id,a,b\n1,x,z")

	want := []simpleDiff{{
		Kind:          "Modify",
		DeletedFields: []string{"1", "x", "y"}, DeletedLine: 2,
		AddedFields: []string{"1", "x", "z"}, AddedLine: 2,
		DifferingColumns: []int{2},
	}}
	if diff := cmp.Diff(want, simplifyAll(set.Records())); diff != "" {
		t.Errorf("diff mismatch (-want +got):\n%s", diff)
	}
}

func TestDiffPureAdd(t *testing.T) {
	// S2
	set := runStreamingDiff(t, "id,a\n", "id,a\n7,q")

	want := []simpleDiff{{Kind: "Add", Fields: []string{"7", "q"}, Line: 2}}
	if diff := cmp.Diff(want, simplifyAll(set.Records())); diff != "" {
		t.Errorf("diff mismatch (-want +got):\n%s", diff)
	}
}

func TestDiffPureDelete(t *testing.T) {
	// S3
	set := runStreamingDiff(t, "id,a\n7,q", "id,a\n")

	want := []simpleDiff{{Kind: "Delete", Fields: []string{"7", "q"}, Line: 2}}
	if diff := cmp.Diff(want, simplifyAll(set.Records())); diff != "" {
		t.Errorf("diff mismatch (-want +got):\n%s", diff)
	}
}

func TestDiffReorderOnlyIsEmpty(t *testing.T) {
	// S4
	set := runStreamingDiff(t, "id\n1\n2\n3", "id\n3\n1\n2")
	require.Equal(t, 0, set.Len())
}

func TestDiffMixed(t *testing.T) {
	// S5
	set := runStreamingDiff(t, "id,v\n1,a\n2,b\n3,c", "id,v\n1,a\n2,B\n4,d")

	want := []simpleDiff{
		{Kind: "Add", Fields: []string{"4", "d"}, Line: 4},
		{Kind: "Delete", Fields: []string{"3", "c"}, Line: 4},
		{
			Kind:          "Modify",
			DeletedFields: []string{"2", "b"}, DeletedLine: 3,
			AddedFields: []string{"2", "B"}, AddedLine: 3,
			DifferingColumns: []int{1},
		},
	}
	if diff := cmp.Diff(want, simplifyAll(set.Records())); diff != "" {
		t.Errorf("diff mismatch (-want +got):\n%s", diff)
	}
}

func TestDiffSeekVariantMatchesStreaming(t *testing.T) {
	left := "id,v\n1,a\n2,b\n3,c"
	right := "id,v\n1,a\n2,B\n4,d"

	streaming := runStreamingDiff(t, left, right)

	d, err := NewBuilder(WithPayloadMode(PayloadSeek)).Build()
	require.NoError(t, err)

	it, err := d.Diff(context.Background(),
		NewSeekableSource(bytes.NewReader([]byte(left))),
		NewSeekableSource(bytes.NewReader([]byte(right))))
	require.NoError(t, err)

	seek, err := Collect(it)
	require.NoError(t, err)

	if diff := cmp.Diff(simplifyAll(streaming.Records()), simplifyAll(seek.Records())); diff != "" {
		t.Errorf("seek/streaming duality mismatch (-streaming +seek):\n%s", diff)
	}
}

func TestDiffDualitySwappingSidesFlipsAddDeleteAndModify(t *testing.T) {
	// Testable property 3: diffing (right, left) must be the exact
	// Add/Delete/Modify mirror of diffing (left, right).
	left := "id,v\n1,a\n2,b\n3,c"
	right := "id,v\n1,a\n2,B\n4,d"

	forward := runStreamingDiff(t, left, right)
	backward := runStreamingDiff(t, right, left)

	want := make([]simpleDiff, 0, forward.Len())
	for _, d := range simplifyAll(forward.Records()) {
		want = append(want, swapSides(d))
	}
	sortSimpleDiffs(want)

	if diff := cmp.Diff(want, simplifyAll(backward.Records())); diff != "" {
		t.Errorf("duality mismatch (-want +got):\n%s", diff)
	}
}

func TestDiffSurfacesReadErrorInBand(t *testing.T) {
	// spec.md §7: an IoError/CsvParseError surfaces as an in-band error
	// from Iterator/Collect, tagged with the originating side.
	left := "id,a\n1,\"unterminated"
	right := "id,a\n1,x"

	d, err := NewBuilder().Build()
	require.NoError(t, err)

	it, err := d.Diff(context.Background(), NewSource(strings.NewReader(left)), NewSource(strings.NewReader(right)))
	require.NoError(t, err)

	_, err = Collect(it)
	require.Error(t, err)

	var readErr *ReadError
	require.ErrorAs(t, err, &readErr)
	assert.Equal(t, Left, readErr.Side)
}

func TestDiffSeekRequiresSeekableSource(t *testing.T) {
	d, err := NewBuilder(WithPayloadMode(PayloadSeek)).Build()
	require.NoError(t, err)

	_, err = d.Diff(context.Background(),
		NewSource(strings.NewReader("id\n1")),
		NewSource(strings.NewReader("id\n1")))
	require.ErrorIs(t, err, ErrSeekSourceRequired)
}

func TestDiffHasherStatsAccounting(t *testing.T) {
	// Testable property 6 (the recycle channel bounds allocation) is made
	// observable through HasherStats; this checks that a Diff call
	// populates both sides' counters.
	d, err := NewBuilder().Build()
	require.NoError(t, err)

	left := "id,v\n1,a\n2,b\n3,c\n4,d\n5,e"
	right := "id,v\n1,a\n2,b\n3,c\n4,d\n5,e"

	it, err := d.Diff(context.Background(), NewSource(strings.NewReader(left)), NewSource(strings.NewReader(right)))
	require.NoError(t, err)
	_, err = Collect(it)
	require.NoError(t, err)

	snapLeft := d.StatsLeft.Snapshot()
	snapRight := d.StatsRight.Snapshot()
	require.Greater(t, snapLeft.Allocated, int64(0))
	require.Greater(t, snapRight.Allocated, int64(0))
}
