package csvdiff

import (
	"bytes"
	"sort"
)

// DiffRecordSet is the eager result surface of spec.md §4.3: Collect
// drives an Iterator to exhaustion and wraps the resulting records,
// adding SortByLine and SortByColumns.
type DiffRecordSet struct {
	records  []DiffRecord
	warnings []DuplicateKeyWarning
}

// Collect drains it to exhaustion. The returned error is the first
// in-band error encountered (spec.md §7); collection continues past it,
// so a partial DiffRecordSet is still returned alongside a non-nil error.
func Collect(it *Iterator) (*DiffRecordSet, error) {
	var records []DiffRecord
	var firstErr error
	for {
		rec, err, ok := it.Next()
		if !ok {
			break
		}
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		records = append(records, rec)
	}
	return &DiffRecordSet{records: records, warnings: it.Warnings()}, firstErr
}

// Len reports the number of DiffRecords in the set.
func (s *DiffRecordSet) Len() int {
	return len(s.records)
}

// Records returns the underlying slice. It is not copied: sorting the
// returned slice in place is exactly what SortByLine/SortByColumns do.
func (s *DiffRecordSet) Records() []DiffRecord {
	return s.records
}

// Warnings returns any DuplicateKeyWarnings collected during the diff.
func (s *DiffRecordSet) Warnings() []DuplicateKeyWarning {
	return s.warnings
}

func diffLine(d DiffRecord) int {
	if d.Kind == KindModify {
		if d.DeletedLine < d.AddedLine {
			return d.DeletedLine
		}
		return d.AddedLine
	}
	return d.Line
}

// kindRankByLine gives the tie-break order for SortByLine: Delete < Add < Modify.
func kindRankByLine(k DiffKind) int {
	switch k {
	case KindDelete:
		return 0
	case KindAdd:
		return 1
	default:
		return 2
	}
}

// SortByLine sorts the set in place by spec.md §4.3's total order: the
// contained record's line number (min(deleted, added) for Modify), with
// Delete before Add before Modify at equal line numbers. The sort is
// idempotent and stable.
func (s *DiffRecordSet) SortByLine() {
	sort.SliceStable(s.records, func(i, j int) bool {
		a, b := s.records[i], s.records[j]
		la, lb := diffLine(a), diffLine(b)
		if la != lb {
			return la < lb
		}
		return kindRankByLine(a.Kind) < kindRankByLine(b.Kind)
	})
}

// kindRankByColumns gives the cross-kind tie-break order for
// SortByColumns at equal column values: Delete < Modify < Add (spec.md
// §4.3: "Delete < Add; Delete < Modify; Modify < Add").
func kindRankByColumns(k DiffKind) int {
	switch k {
	case KindDelete:
		return 0
	case KindModify:
		return 1
	default:
		return 2
	}
}

// columnValue returns the bytes of record d's field at idx, using the
// delete side for Modify records unless addedSide is set.
func columnValue(d DiffRecord, idx int, addedSide bool) ([]byte, error) {
	var rec *ByteRecord
	switch d.Kind {
	case KindModify:
		if addedSide {
			rec = d.Added
		} else {
			rec = d.Deleted
		}
	default:
		rec = d.Record
	}
	field, ok := rec.Field(idx)
	if !ok {
		return nil, &ColumnIndexOutOfBoundsError{Index: idx, RecordLength: rec.Len()}
	}
	return field, nil
}

// compareByColumns implements spec.md §4.3's sort_by_columns ordering. A
// column lookup failure on either side makes this comparison Equal and
// records the first such error into *firstErr, without aborting the sort.
func compareByColumns(a, b DiffRecord, indices []int, firstErr *error) int {
	if c := compareColumnValues(a, b, indices, false, firstErr); c != 0 {
		return c
	}
	if a.Kind == KindModify && b.Kind == KindModify {
		if c := compareColumnValues(a, b, indices, true, firstErr); c != 0 {
			return c
		}
	}
	return kindRankByColumns(a.Kind) - kindRankByColumns(b.Kind)
}

func compareColumnValues(a, b DiffRecord, indices []int, addedSide bool, firstErr *error) int {
	for _, idx := range indices {
		va, erra := columnValue(a, idx, addedSide)
		vb, errb := columnValue(b, idx, addedSide)
		if erra != nil || errb != nil {
			if *firstErr == nil {
				if erra != nil {
					*firstErr = erra
				} else {
					*firstErr = errb
				}
			}
			return 0
		}
		if c := bytes.Compare(va, vb); c != 0 {
			return c
		}
	}
	return 0
}

// SortByColumns sorts the set in place by the lexicographic order of the
// given column indices (spec.md §4.3). The sort always completes; if any
// compared record lacks one of the indices, the first such
// ColumnIndexOutOfBoundsError is returned after sorting finishes, with
// that comparison treated as Equal. The sort is idempotent and stable.
func (s *DiffRecordSet) SortByColumns(indices []int) error {
	var firstErr error
	sort.SliceStable(s.records, func(i, j int) bool {
		return compareByColumns(s.records[i], s.records[j], indices, &firstErr) < 0
	})
	return firstErr
}
