package alignexec

import (
	"github.com/jackzhao-mj/click/alignment"
	"github.com/jackzhao-mj/click/elementmap"
	"github.com/jackzhao-mj/click/graph"
)

// RouterAlign holds the full per-port alignment state for one snapshot of a
// graph and drives the fixpoint propagations over it. The vectors are sized
// once from the graph at construction; any later graph mutation makes the
// snapshot stale, and a fresh one must be built instead of patching this
// one.
type RouterAlign struct {
	router *graph.Router

	icount  []int
	ocount  []int
	ioffset []int // per element, start of its slice in ialign; one extra final entry
	ooffset []int

	ialign []alignment.Alignment
	oalign []alignment.Alignment

	aligners  []Aligner
	flowCodes []string
}

// NewRouterAlign builds a fresh engine snapshot from the graph's current
// state. Port counts derive from live connections; the behavior rule and
// flow code are bound per element from its type.
func NewRouterAlign(r *graph.Router, em *elementmap.ElementMap) *RouterAlign {
	ne := r.NElements()
	ra := &RouterAlign{
		router:    r,
		icount:    make([]int, ne),
		ocount:    make([]int, ne),
		ioffset:   make([]int, ne+1),
		ooffset:   make([]int, ne+1),
		aligners:  make([]Aligner, ne),
		flowCodes: make([]string, ne),
	}
	id, od := 0, 0
	for i := 0; i < ne; i++ {
		e := r.Element(i)
		ra.ioffset[i], ra.ooffset[i] = id, od
		ra.icount[i] = r.NInputs(e)
		ra.ocount[i] = r.NOutputs(e)
		id += ra.icount[i]
		od += ra.ocount[i]
		ra.aligners[i] = AlignerFor(e.Type, e.Config)
		ra.flowCodes[i] = em.Traits(e.Type).FlowCode
	}
	ra.ioffset[ne], ra.ooffset[ne] = id, od
	ra.ialign = make([]alignment.Alignment, id)
	ra.oalign = make([]alignment.Alignment, od)
	return ra
}

// Clone copies the alignment state into an independent snapshot of the same
// graph. Used to derive the adjustment state from a converged have state.
func (ra *RouterAlign) Clone() *RouterAlign {
	dup := *ra
	dup.ialign = append([]alignment.Alignment(nil), ra.ialign...)
	dup.oalign = append([]alignment.Alignment(nil), ra.oalign...)
	return &dup
}

func (ra *RouterAlign) inSlice(i int) []alignment.Alignment {
	return ra.ialign[ra.ioffset[i]:ra.ioffset[i+1]]
}

func (ra *RouterAlign) outSlice(i int) []alignment.Alignment {
	return ra.oalign[ra.ooffset[i]:ra.ooffset[i+1]]
}

// HaveOutput runs every element's forward rule, recomputing output
// guarantees from the current input guarantees.
func (ra *RouterAlign) HaveOutput() {
	for i := range ra.aligners {
		ra.aligners[i].HaveFlow(ra.inSlice(i), ra.outSlice(i), ra.flowCodes[i])
	}
}

// HaveInput recomputes every input guarantee as the join over all live
// connections feeding it and reports whether anything changed.
func (ra *RouterAlign) HaveInput() bool {
	next := make([]alignment.Alignment, len(ra.ialign))
	for _, c := range ra.router.Connections() {
		if !c.Live() {
			continue
		}
		ioff := ra.ioffset[c.To.Elem.Index()] + c.To.Port
		ooff := ra.ooffset[c.From.Elem.Index()] + c.From.Port
		next[ioff].Weaken(ra.oalign[ooff])
	}
	changed := false
	for i := range next {
		if !next[i].Equal(ra.ialign[i]) {
			changed = true
			break
		}
	}
	ra.ialign = next
	return changed
}

// WantInput runs every element's backward rule, recomputing input
// requirements from the current output requirements.
func (ra *RouterAlign) WantInput() {
	for i := range ra.aligners {
		ra.aligners[i].WantFlow(ra.inSlice(i), ra.outSlice(i), ra.flowCodes[i])
	}
}

// WantOutput recomputes every output requirement as the meet over all live
// connections it feeds and reports whether anything changed.
func (ra *RouterAlign) WantOutput() bool {
	next := make([]alignment.Alignment, len(ra.oalign))
	for _, c := range ra.router.Connections() {
		if !c.Live() {
			continue
		}
		ioff := ra.ioffset[c.To.Elem.Index()] + c.To.Port
		ooff := ra.ooffset[c.From.Elem.Index()] + c.From.Port
		next[ooff].Strengthen(ra.ialign[ioff])
	}
	changed := false
	for i := range next {
		if !next[i].Equal(ra.oalign[i]) {
			changed = true
			break
		}
	}
	ra.oalign = next
	return changed
}

// SolveHave iterates the forward propagation to its fixpoint. Starting from
// all-bad and only ever joining keeps every port monotone in the finite
// lattice, so the loop terminates.
func (ra *RouterAlign) SolveHave() {
	for {
		ra.HaveOutput()
		if !ra.HaveInput() {
			return
		}
	}
}

// SolveWant iterates the backward propagation to its fixpoint.
func (ra *RouterAlign) SolveWant() {
	for {
		ra.WantInput()
		if !ra.WantOutput() {
			return
		}
	}
}

// Adjust applies every element's relaxed requirement rule once, in place.
// It is deliberately not iterated: the receiver already holds a converged
// have state, and adjustment only rewrites it port by port.
func (ra *RouterAlign) Adjust() {
	for i := range ra.aligners {
		ra.aligners[i].AdjustFlow(ra.inSlice(i), ra.outSlice(i))
	}
}

// NInputs returns element i's input port count in this snapshot.
func (ra *RouterAlign) NInputs(i int) int { return ra.icount[i] }

// NOutputs returns element i's output port count in this snapshot.
func (ra *RouterAlign) NOutputs(i int) int { return ra.ocount[i] }

// InputAlignment returns the state at input port (element i, port j).
func (ra *RouterAlign) InputAlignment(i, j int) alignment.Alignment {
	return ra.ialign[ra.ioffset[i]+j]
}

// OutputAlignment returns the state at output port (element i, port j).
func (ra *RouterAlign) OutputAlignment(i, j int) alignment.Alignment {
	return ra.oalign[ra.ooffset[i]+j]
}

// InputIndex maps a flat input port index back to (element, port), for
// diagnostics. Returns (-1, -1) when out of range.
func (ra *RouterAlign) InputIndex(ii int) (elem, port int) {
	for i := range ra.icount {
		if ii < ra.ioffset[i+1] {
			return i, ii - ra.ioffset[i]
		}
	}
	return -1, -1
}

// OutputIndex maps a flat output port index back to (element, port).
func (ra *RouterAlign) OutputIndex(oi int) (elem, port int) {
	for i := range ra.ocount {
		if oi < ra.ooffset[i+1] {
			return i, oi - ra.ooffset[i]
		}
	}
	return -1, -1
}
