package csvdiff

import "github.com/klauspost/cpuid/v2"

// Re-grounding of the teacher's own dependency: raceordie690-simdcsv used
// klauspost/cpuid to gate a SIMD-vs-fallback CSV parsing choice this
// module has no use for (CSV lexing is delegated, see csvreader.go). Here
// it sizes the comparator's starting capacity threshold and the default
// channel buffers instead, the same role runtime.NumCPU()-based sizing
// played in the teacher's stage2Streaming worker count, just sourced from
// cache topology rather than core count alone.

// defaultCapStart picks a cap_left/cap_right starting threshold (spec.md
// §4.2/§9's cap_start) informed by L2 cache size: bigger caches can hold
// a larger in-flight working set before a drain pays for itself in
// re-hashing. 10 is the spec-mandated floor (§4.2's max(10, line/100)).
func defaultCapStart() int {
	l2 := cpuid.CPU.Cache.L2
	if l2 <= 0 {
		return 10
	}
	const perEntry = 256 // rough resident footprint of one inflightEntry, bytes
	n := l2 / perEntry
	if n < 10 {
		return 10
	}
	return n
}

// defaultChannelCapacity sizes the streaming variant's sink channel
// (spec.md §5: "bounded or small-buffered... to supply back-pressure")
// from the machine's logical core count, so a busier machine gets more
// producer/consumer slack before a hasher blocks.
func defaultChannelCapacity() int {
	cores := cpuid.CPU.LogicalCores
	if cores <= 0 {
		cores = 1
	}
	return cores * 64
}

// avgRecordBytes is the assumed average on-wire size of one CSV record,
// used only to turn a Source's byte-length SizeHint into a rough record
// count for capStartForSources.
const avgRecordBytes = 32

// capStartForSources derives one Diff call's actual cap_left/cap_right
// starting threshold (spec.md §4.2/§9's cap_start) from the cpuid-derived
// baseline, scaled up when either side's Source carries a SizeHint
// (spec.md §6) suggesting a larger initial in-flight working set than the
// cache-topology baseline alone would pick. Computed per call, not once at
// Builder.Build() time, since SizeHint is only known once a Source exists.
func capStartForSources(base int, left, right *Source) int {
	hint := left.SizeHint
	if right.SizeHint > hint {
		hint = right.SizeHint
	}
	if hint <= 0 {
		return base
	}
	estimated := int(hint / avgRecordBytes)
	if estimated > base {
		return estimated
	}
	return base
}
