package alignexec

import (
	"strings"

	"github.com/jackzhao-mj/click/alignment"
)

// Aligner is one element type's alignment transfer rule. The slices passed
// in are pre-sized to the element's port counts; implementations overwrite
// the computed side in place and must not retain either slice.
type Aligner interface {
	// HaveFlow computes each output's guaranteed alignment from the current
	// input alignments, overwriting out.
	HaveFlow(in, out []alignment.Alignment, flowCode string)

	// WantFlow computes each input's required alignment from the current
	// output requirements, overwriting in.
	WantFlow(in, out []alignment.Alignment, flowCode string)

	// AdjustFlow relaxes an already-converged have state into the weakest
	// sufficient requirement, overwriting in. Rules without a relaxed form
	// leave the state untouched, which reads back as "whatever is there is
	// fine".
	AdjustFlow(in, out []alignment.Alignment)
}

// Flow codes describe which output ports carry data arriving on which input
// ports: "inputcodes/outputcodes", one byte per port with the last byte
// covering any extra ports. Equal bytes connect; '#' connects only the
// same-numbered port. An empty code means "x/x": everything flows
// everywhere.

func splitFlowCode(flowCode string) (in, out string) {
	if i := strings.IndexByte(flowCode, '/'); i >= 0 {
		return flowCode[:i], flowCode[i+1:]
	}
	return flowCode, flowCode
}

func portCode(codes string, port int) byte {
	if codes == "" {
		return 'x'
	}
	if port < len(codes) {
		return codes[port]
	}
	return codes[len(codes)-1]
}

// flowConnects reports whether data arriving on input i can leave on output j.
func flowConnects(flowCode string, i, j int) bool {
	in, out := splitFlowCode(flowCode)
	ci, cj := portCode(in, i), portCode(out, j)
	if ci == '#' || cj == '#' {
		return i == j
	}
	return ci == cj
}

// defaultAligner drives both directions purely from the flow code: an output
// guarantees the join of the inputs feeding it, an input must satisfy the
// meet of the outputs it feeds, and unrelated ports stay bad.
type defaultAligner struct{}

// DefaultAligner returns the rule used for any type without a specialized
// one.
func DefaultAligner() Aligner { return defaultAligner{} }

func (defaultAligner) HaveFlow(in, out []alignment.Alignment, flowCode string) {
	for j := range out {
		a := alignment.Bad()
		for i := range in {
			if flowConnects(flowCode, i, j) {
				a.Weaken(in[i])
			}
		}
		out[j] = a
	}
}

func (defaultAligner) WantFlow(in, out []alignment.Alignment, flowCode string) {
	for i := range in {
		a := alignment.Bad()
		for j := range out {
			if flowConnects(flowCode, i, j) {
				a.Strengthen(out[j])
			}
		}
		in[i] = a
	}
}

func (defaultAligner) AdjustFlow(in, out []alignment.Alignment) {}

// shifterAligner models elements that prepend or strip a fixed-size header:
// output alignment is the input alignment slid by a constant byte count,
// pairing ports by number.
type shifterAligner struct {
	shift int
}

// ShifterAligner returns the rule for a fixed shift of the data start.
// Stripping n header bytes is a shift of +n; prepending is negative.
func ShifterAligner(shift int) Aligner { return shifterAligner{shift: shift} }

func (s shifterAligner) HaveFlow(in, out []alignment.Alignment, _ string) {
	for j := range out {
		a := alignment.Bad()
		if j < len(in) {
			a = in[j]
		}
		out[j] = a.Shift(s.shift)
	}
}

func (s shifterAligner) WantFlow(in, out []alignment.Alignment, _ string) {
	for i := range in {
		a := alignment.Bad()
		if i < len(out) {
			a = out[i]
		}
		in[i] = a.Shift(-s.shift)
	}
}

func (shifterAligner) AdjustFlow(in, out []alignment.Alignment) {}

// generatorAligner models elements that synthesize data: every output
// carries exactly the configured alignment and no input requirement is ever
// reported.
type generatorAligner struct {
	a alignment.Alignment
}

// GeneratorAligner returns the rule for a fixed output guarantee.
func GeneratorAligner(a alignment.Alignment) Aligner { return generatorAligner{a: a} }

func (g generatorAligner) HaveFlow(in, out []alignment.Alignment, _ string) {
	for j := range out {
		out[j] = g.a
	}
}

func (g generatorAligner) WantFlow(in, out []alignment.Alignment, _ string) {
	for i := range in {
		in[i] = alignment.Bad()
	}
}

func (generatorAligner) AdjustFlow(in, out []alignment.Alignment) {}

// wantAligner models elements sensitive to one fixed input alignment,
// whatever their outputs require. Guarantees still flow through the flow
// code as usual.
type wantAligner struct {
	defaultAligner
	a alignment.Alignment
}

// WantAligner returns the rule for a fixed input requirement.
func WantAligner(a alignment.Alignment) Aligner { return wantAligner{a: a} }

func (w wantAligner) WantFlow(in, out []alignment.Alignment, _ string) {
	for i := range in {
		in[i] = w.a
	}
}

// combinedAligner composes two rules: the first supplies the forward
// guarantee, the second the backward requirement and its relaxation. Used
// for elements that both shift the data and impose an alignment on it.
type combinedAligner struct {
	have Aligner
	want Aligner
}

// CombinedAligner composes a guarantee rule with a requirement rule.
func CombinedAligner(have, want Aligner) Aligner { return combinedAligner{have: have, want: want} }

func (c combinedAligner) HaveFlow(in, out []alignment.Alignment, flowCode string) {
	c.have.HaveFlow(in, out, flowCode)
}

func (c combinedAligner) WantFlow(in, out []alignment.Alignment, flowCode string) {
	c.want.WantFlow(in, out, flowCode)
}

func (c combinedAligner) AdjustFlow(in, out []alignment.Alignment) {
	c.want.AdjustFlow(in, out)
}

// classifierAligner behaves like the default rule except under adjustment:
// the element copes with any alignment whose chunk is at least 4, so an
// already-available weaker-but-sufficient guarantee is reported as the
// requirement instead of one exact value.
type classifierAligner struct {
	defaultAligner
}

// ClassifierAligner returns the rule for classifier-like elements.
func ClassifierAligner() Aligner { return classifierAligner{} }

func (classifierAligner) AdjustFlow(in, out []alignment.Alignment) {
	for i := range in {
		if in[i].Chunk() < 4 {
			in[i] = alignment.Make(4, in[i].Offset())
		}
	}
}

// nullAligner is for elements with no real data flow: nothing guaranteed,
// nothing required.
type nullAligner struct{}

// NullAligner returns the rule for sinks and idle elements.
func NullAligner() Aligner { return nullAligner{} }

func (nullAligner) HaveFlow(in, out []alignment.Alignment, _ string) {
	for j := range out {
		out[j] = alignment.Bad()
	}
}

func (nullAligner) WantFlow(in, out []alignment.Alignment, _ string) {
	for i := range in {
		in[i] = alignment.Bad()
	}
}

func (nullAligner) AdjustFlow(in, out []alignment.Alignment) {}
