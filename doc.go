// Package csvdiff computes the record-level difference between two CSV
// documents, matched by a primary key composed of one or more column
// indices.
//
// Two goroutines hash every record on one side of the diff (key hash and
// content hash, both 128-bit) and stream the results over a shared channel
// to a single merging comparator, which resolves Added, Deleted and
// Modified classifications as soon as both sides of a key have been seen.
// The comparator itself runs on the caller's goroutine, pulled forward one
// message at a time by Iterator.Next, and is exposed either as that lazy
// Iterator or, after Collect, as a DiffRecordSet that supports sorting by
// line number or by column.
package csvdiff
