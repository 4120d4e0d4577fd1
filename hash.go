package csvdiff

import "github.com/zeebo/xxh3"

// RecordHash is the pair of 128-bit digests computed for one record: a key
// hash over only the primary-key fields, and a content hash over the
// entire record. Grounded directly on
// original_source/src/csv_hasher.rs's hash_key_fields/hash_record split.
type RecordHash struct {
	Key     xxh3.Uint128
	Content xxh3.Uint128
}

// hashKeyFields feeds the record's primary-key fields, in key.Columns()
// order, into an incremental xxh3 hasher. Missing indices are silently
// skipped (spec.md §4.1.c).
func hashKeyFields(rec *ByteRecord, key PrimaryKey) xxh3.Uint128 {
	h := xxh3.New()
	for _, idx := range key.Columns() {
		if field, ok := rec.Field(idx); ok {
			h.Write(field)
		}
	}
	return h.Sum128()
}

// hashContent hashes the record's entire raw byte content in one call,
// mirroring xxh3_128(record.as_slice()) in the original Rust
// implementation. This over-hashes key fields but avoids per-field hashing
// cost (spec.md §4.1.d).
func hashContent(rec *ByteRecord) xxh3.Uint128 {
	return xxh3.Hash128(rec.Raw)
}
