package sim

import "github.com/g960059/hemosim/internal/circ"

// RetentionMs bounds the simulated-time span each instance keeps for
// consumers. Anything older than this behind the newest record is dropped.
const RetentionMs = 21000.0

// Record is one integration output: the time after the step, the state
// vector, and the pressures captured when the step's first derivative
// evaluation ran. Records are immutable once appended.
type Record struct {
	T   float64
	Y   circ.State
	Aux circ.Aux
}

// Buffer keeps a time-ordered rolling window of records. One writer
// appends; readers take copies through Snapshot or Since. The compaction
// threshold keeps Append amortized O(1) without a ring index.
type Buffer struct {
	records []Record
	start   int
}

func NewBuffer() *Buffer {
	return &Buffer{}
}

// Append adds a record and drops entries that fell out of the retention
// window relative to the newcomer.
func (b *Buffer) Append(r Record) {
	b.records = append(b.records, r)
	for b.start < len(b.records) && r.T-b.records[b.start].T > RetentionMs {
		b.start++
	}
	if b.start > 1024 && b.start > len(b.records)/2 {
		n := copy(b.records, b.records[b.start:])
		b.records = b.records[:n]
		b.start = 0
	}
}

func (b *Buffer) Len() int {
	return len(b.records) - b.start
}

func (b *Buffer) Latest() (Record, bool) {
	if b.Len() == 0 {
		return Record{}, false
	}
	return b.records[len(b.records)-1], true
}

func (b *Buffer) Oldest() (Record, bool) {
	if b.Len() == 0 {
		return Record{}, false
	}
	return b.records[b.start], true
}

// Snapshot copies the retained window. The record structs are copied; the
// state slices inside are shared but never mutated after append.
func (b *Buffer) Snapshot() []Record {
	out := make([]Record, b.Len())
	copy(out, b.records[b.start:])
	return out
}

// Since copies the records with T >= t.
func (b *Buffer) Since(t float64) []Record {
	live := b.records[b.start:]
	lo := len(live)
	for i := len(live) - 1; i >= 0; i-- {
		if live[i].T < t {
			break
		}
		lo = i
	}
	out := make([]Record, len(live)-lo)
	copy(out, live[lo:])
	return out
}
