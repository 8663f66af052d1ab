// Package alignment implements the constraint lattice used by the alignment
// passes. An Alignment states that a byte address is congruent to a fixed
// offset modulo a power-of-two chunk. Two combination operators exist:
// Weaken joins guarantees arriving from multiple producers, and Strengthen
// meets requirements converging from multiple consumers.
package alignment

import "strconv"

// Alignment is the constraint "address = offset (mod chunk)". The zero value
// carries no constraint at all and is Bad; any chunk below 2 is Bad. Bad
// doubles as "unknown" and "unsatisfiable" -- a failed combination collapses
// to the chunk-1 form, which both operators then treat as absorbing.
type Alignment struct {
	chunk  int
	offset int
}

// Make builds the alignment "address = offset (mod chunk)". Chunks below 2
// collapse to the zero value; offsets are reduced into [0, chunk).
func Make(chunk, offset int) Alignment {
	if chunk < 2 {
		return Alignment{}
	}
	offset %= chunk
	if offset < 0 {
		offset += chunk
	}
	return Alignment{chunk: chunk, offset: offset}
}

// Bad returns the distinguished no-constraint value.
func Bad() Alignment { return Alignment{} }

// impossible is the absorbing Bad form produced by a failed combination.
func impossible() Alignment { return Alignment{chunk: 1} }

// IsBad reports whether a carries no usable constraint.
func (a Alignment) IsBad() bool { return a.chunk < 2 }

// Chunk returns the modulus; 0 or 1 for Bad values.
func (a Alignment) Chunk() int { return a.chunk }

// Offset returns the residue, in [0, chunk) for non-Bad values.
func (a Alignment) Offset() int { return a.offset }

// Equal reports structural equality. All Bad values compare equal.
func (a Alignment) Equal(b Alignment) bool {
	if a.IsBad() || b.IsBad() {
		return a.IsBad() && b.IsBad()
	}
	return a.chunk == b.chunk && a.offset == b.offset
}

// LessEq reports whether a guarantees at least what want requires: every
// address satisfying a also satisfies want. A Bad requirement is vacuous; a
// Bad guarantee satisfies nothing.
func (a Alignment) LessEq(want Alignment) bool {
	if want.IsBad() {
		return true
	}
	if a.IsBad() {
		return false
	}
	return a.chunk%want.chunk == 0 && a.offset%want.chunk == want.offset
}

// Weaken joins b into a: the coarsest alignment implied by "either a or b
// holds". The zero value is the identity; a combination that cannot agree on
// a common residue collapses to an absorbing Bad. Reports whether a changed.
func (a *Alignment) Weaken(b Alignment) bool {
	switch {
	case a.chunk == 1 || b.chunk == 0:
		return false
	case b.chunk == 1:
		changed := a.chunk != 1
		*a = impossible()
		return changed
	case a.chunk == 0:
		*a = b
		return true
	}
	chunk := a.chunk
	if b.chunk < chunk {
		chunk = b.chunk
	}
	for chunk > 1 && a.offset%chunk != b.offset%chunk {
		chunk /= 2
	}
	next := Make(chunk, a.offset)
	if chunk < 2 {
		next = impossible()
	}
	if next == *a {
		return false
	}
	*a = next
	return true
}

// Strengthen meets b into a: the requirement met only when both a and b are.
// The zero value is the identity; conflicting non-Bad requirements collapse
// to an absorbing Bad, since no single insertable alignment can satisfy
// both. Reports whether a changed.
func (a *Alignment) Strengthen(b Alignment) bool {
	switch {
	case a.chunk == 1 || b.chunk == 0:
		return false
	case b.chunk == 1:
		changed := a.chunk != 1
		*a = impossible()
		return changed
	case a.chunk == 0:
		*a = b
		return true
	}
	big, small := *a, b
	if small.chunk > big.chunk {
		big, small = small, big
	}
	next := impossible()
	if big.offset%small.chunk == small.offset {
		next = big
	}
	if next == *a {
		return false
	}
	*a = next
	return true
}

// Shift slides the constraint by delta bytes: an address satisfying a
// satisfies the result after delta bytes are prepended (delta may be
// negative). Bad shifts to itself.
func (a Alignment) Shift(delta int) Alignment {
	if a.IsBad() {
		return a
	}
	return Make(a.chunk, a.offset+delta)
}

// String renders "chunk/offset", or "-" for Bad.
func (a Alignment) String() string {
	if a.IsBad() {
		return "-"
	}
	return strconv.Itoa(a.chunk) + "/" + strconv.Itoa(a.offset)
}
