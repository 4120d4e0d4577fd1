package csvdiff

// Iterator is the lazy result surface of spec.md §4.3: each call to Next
// advances the comparator until either a DiffRecord is ready, an error
// surfaces, or the stream is exhausted. It is erased over the comparator's
// Payload type parameter so the public API does not need to be generic —
// Diff constructs the right internal instantiation (streaming or seek)
// and wraps it here.
type Iterator struct {
	next     func() (DiffRecord, error, bool)
	warnings func() []DuplicateKeyWarning
}

// Next returns the next DiffRecord. ok is false once both the eager
// Modify buffer and the end-of-stream walk are exhausted. err is non-nil
// when a read or materialize failure surfaced in-band (spec.md §7); when
// err is non-nil, rec is the zero value and ok is true — the iterator is
// not finished, callers should keep calling Next.
func (it *Iterator) Next() (rec DiffRecord, err error, ok bool) {
	return it.next()
}

// iteratorState holds the Payload-typed state backing an Iterator.
type iteratorState[Payload any] struct {
	sink   <-chan taggedHash[Payload]
	cmp    *comparator[Payload]
	closed bool
	walked bool
}

func newIterator[Payload any](sink <-chan taggedHash[Payload], cmp *comparator[Payload]) *Iterator {
	st := &iteratorState[Payload]{sink: sink, cmp: cmp}
	return &Iterator{
		next:     st.next,
		warnings: func() []DuplicateKeyWarning { return cmp.warnings },
	}
}

func (st *iteratorState[Payload]) next() (DiffRecord, error, bool) {
	for {
		if len(st.cmp.errs) > 0 {
			err := st.cmp.errs[0]
			st.cmp.errs = st.cmp.errs[1:]
			return DiffRecord{}, err, true
		}
		if len(st.cmp.buffered) > 0 {
			rec := st.cmp.buffered[0]
			st.cmp.buffered = st.cmp.buffered[1:]
			return rec, nil, true
		}
		if st.closed {
			if !st.walked {
				st.walked = true
				st.cmp.finish()
				continue
			}
			return DiffRecord{}, nil, false
		}

		msg, open := <-st.sink
		if !open {
			st.closed = true
			continue
		}
		st.cmp.process(msg)
	}
}

// Warnings returns any DuplicateKeyWarnings collected so far (only
// populated under CollectAsWarnings; see SPEC_FULL.md §4.9). Safe to call
// at any point, including before Next reports exhaustion.
func (it *Iterator) Warnings() []DuplicateKeyWarning {
	return it.warnings()
}
