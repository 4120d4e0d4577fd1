package csvdiff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(fields ...string) *ByteRecord {
	r := &ByteRecord{}
	r.fill(fields, 1, 0)
	return r
}

func TestComputeDifferingColumns(t *testing.T) {
	t.Run("single column differs", func(t *testing.T) {
		deleted := rec("_", "b", "_")
		added := rec("_", "a", "_")
		assert.Equal(t, []int{1}, computeDifferingColumns(deleted, added))
	})

	t.Run("no differences", func(t *testing.T) {
		deleted := rec("1", "x", "y")
		added := rec("1", "x", "y")
		assert.Nil(t, computeDifferingColumns(deleted, added))
	})

	t.Run("ignores trailing fields of the longer record", func(t *testing.T) {
		deleted := rec("1", "x")
		added := rec("1", "x", "extra")
		assert.Nil(t, computeDifferingColumns(deleted, added))
	})
}

func TestNewModify(t *testing.T) {
	deleted := rec("1", "x", "y")
	added := rec("1", "x", "z")
	d := NewModify(deleted, added, computeDifferingColumns(deleted, added))

	require.Equal(t, KindModify, d.Kind)
	assert.Equal(t, []int{2}, d.DifferingColumns)
	assert.Same(t, deleted, d.Deleted)
	assert.Same(t, added, d.Added)
}

func TestDiffKindString(t *testing.T) {
	assert.Equal(t, "Add", KindAdd.String())
	assert.Equal(t, "Delete", KindDelete.String())
	assert.Equal(t, "Modify", KindModify.String())
}
