// Package alignexec computes, and then repairs, alignment mismatches in an
// element graph. Two independent fixpoint propagations derive the alignment
// available at every port ("have") and the alignment required there
// ("want"); a multi-phase rewrite then splices adjuster elements in front of
// every unmet requirement, collapses and removes redundant adjusters, and
// emits one annotation element summarizing the final state for
// alignment-sensitive elements.
package alignexec

import (
	"fmt"
	"strings"

	"github.com/jackzhao-mj/click/elementmap"
	"github.com/jackzhao-mj/click/graph"
)

// Rewrite runs the full phase sequence over the graph and returns the net
// number of adjuster elements added. Every phase that needs alignment
// information builds a fresh engine snapshot; earlier phases' mutations make
// prior snapshots stale.
func Rewrite(r *graph.Router, em *elementmap.ElementMap, opts Options) int {
	opts.setDefaults()
	log := opts.Logger

	originalNElements := r.NElements()
	added := 0

	// Phase 1: insert an adjuster wherever a strict requirement is unmet.
	{
		have := NewRouterAlign(r, em)
		have.SolveHave()
		want := NewRouterAlign(r, em)
		want.SolveWant()

		n := insertAligners(r, em, opts, originalNElements, have, want)
		added += n
		log.Debug().Int("inserted", n).Msg("required-alignment insertion done")
	}

	// Phase 2: collapse adjacent adjuster pairs left by phase 1.
	removeAdjacentAligners(r, opts)

	// Phase 3: insert adjusters for relaxed requirements. The adjustment
	// state is a one-shot rewrite of a converged have state, not its own
	// fixpoint.
	{
		have := NewRouterAlign(r, em)
		have.SolveHave()
		want := have.Clone()
		want.Adjust()

		n := insertAligners(r, em, opts, originalNElements, have, want)
		added += n
		log.Debug().Int("inserted", n).Msg("adjustment insertion done")
	}

	// Phase 4: drop connections into adjusters that no longer change
	// anything. Removing one adjuster changes downstream have values, so
	// recompute and repeat until a full pass is quiet.
	for pass := 0; ; pass++ {
		ra := NewRouterAlign(r, em)
		ra.SolveHave()

		changed := false
		nconn := r.NConnections()
		for i := 0; i < nconn; i++ {
			c := r.Connection(i)
			if !c.Live() || c.To.Elem.Type != opts.AlignType {
				continue
			}
			toIdx := c.To.Elem.Index()
			if ra.NOutputs(toIdx) == 0 {
				// Dead-end adjuster; the dangling cleanup removes it.
				continue
			}
			have := ra.OutputAlignment(c.From.Elem.Index(), c.From.Port)
			want := ra.OutputAlignment(toIdx, 0)
			if !have.LessEq(want) {
				continue
			}
			// The adjuster contributes nothing on this edge: feed its
			// consumers directly and cut the edge.
			changed = true
			for _, dest := range r.FindConnectionsFrom(graph.Port{Elem: c.To.Elem, Port: 0}) {
				r.AddConnection(c.From, dest)
			}
			r.KillConnection(i)
		}
		if !changed {
			log.Debug().Int("passes", pass).Msg("redundant-adjuster removal converged")
			break
		}
		r.RemoveDuplicateConnections()
	}

	// Phase 5: drop adjusters left dangling by phases 2-4, and any stale
	// annotation element about to be superseded.
	for _, e := range r.Elements() {
		if e.Type == opts.AlignType && (r.NInputs(e) == 0 || r.NOutputs(e) == 0) {
			r.Kill(e)
			added--
		} else if e.Type == opts.InfoType {
			r.Kill(e)
		}
	}
	r.RemoveDeadElements()

	// Phase 6: emit the annotation element for downstream tooling.
	emitAnnotation(r, em, opts)

	log.Debug().Int("net_added", added).Msg("rewrite complete")
	return added
}

// insertAligners splices a freshly named adjuster upstream of every original
// input port whose have state does not satisfy its want state. A bad want
// means no requirement, so nothing is inserted there.
func insertAligners(r *graph.Router, em *elementmap.ElementMap, opts Options,
	originalNElements int, have, want *RouterAlign) int {
	added := 0
	for i := 0; i < originalNElements; i++ {
		if r.Element(i).Dead() {
			continue
		}
		for j := 0; j < have.NInputs(i); j++ {
			h := have.InputAlignment(i, j)
			w := want.InputAlignment(i, j)
			if h.LessEq(w) || w.IsBad() {
				continue
			}
			e := r.GetElement(r.UniqueName(opts.AlignType), opts.AlignType,
				fmt.Sprintf("%d, %d", w.Chunk(), w.Offset()))
			r.InsertBefore(e, graph.Port{Elem: r.Element(i), Port: j})
			added++
		}
	}
	return added
}

// removeAdjacentAligners splices out one adjuster of any
// adjuster-to-adjuster connection: whichever end has a single counterpart
// can be bypassed, leaving it dangling for the dead-element cleanup.
func removeAdjacentAligners(r *graph.Router, opts Options) {
	nconn := r.NConnections()
	for i := 0; i < nconn; i++ {
		c := r.Connection(i)
		if !c.Live() || c.From.Elem.Type != opts.AlignType || c.To.Elem.Type != opts.AlignType {
			continue
		}
		upIn := graph.Port{Elem: c.From.Elem, Port: 0}
		above := r.FindConnectionsTo(upIn)
		below := r.FindConnectionsFrom(graph.Port{Elem: c.From.Elem, Port: 0})
		if len(below) == 1 {
			// The upstream adjuster feeds only us: route its inputs straight
			// to the downstream adjuster.
			for j := 0; j < nconn; j++ {
				if r.Connection(j).Live() && r.Connection(j).To == upIn {
					r.ChangeConnectionTo(j, c.To)
				}
			}
		} else if len(above) == 1 {
			// The downstream adjuster has one producer: take data from the
			// upstream adjuster's own source instead.
			for j := 0; j < nconn; j++ {
				if r.Connection(j).Live() && r.Connection(j).To == c.To {
					r.ChangeConnectionFrom(j, above[0])
				}
			}
		}
	}
}

// emitAnnotation records, for every alignment-sensitive element, the final
// have alignment of each of its input ports, and attaches the list to one
// fresh annotation element.
func emitAnnotation(r *graph.Router, em *elementmap.ElementMap, opts Options) {
	ra := NewRouterAlign(r, em)
	ra.SolveHave()

	var sa strings.Builder
	for _, e := range r.Elements() {
		i := e.Index()
		if ra.NInputs(i) == 0 || em.FlagValue(e.Type, 'A') <= 0 {
			continue
		}
		if sa.Len() > 0 {
			sa.WriteString(",\n  ")
		}
		sa.WriteString(e.Name)
		for j := 0; j < ra.NInputs(i); j++ {
			a := ra.InputAlignment(i, j)
			fmt.Fprintf(&sa, "  %d %d", a.Chunk(), a.Offset())
		}
	}
	if sa.Len() > 0 {
		r.GetElement(r.UniqueName(opts.InfoType), opts.InfoType, sa.String())
	}
}
