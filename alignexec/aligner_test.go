package alignexec

import (
	"testing"

	"github.com/jackzhao-mj/click/alignment"
)

func TestFlowConnects(t *testing.T) {
	tests := []struct {
		code string
		i, j int
		want bool
	}{
		{"", 0, 0, true},
		{"", 0, 5, true},
		{"x/x", 0, 0, true},
		{"x/x", 1, 0, true},
		{"x/y", 0, 0, false},
		{"xy/x", 0, 0, true},
		{"xy/x", 1, 0, false},
		{"#/#", 0, 0, true},
		{"#/#", 0, 1, false},
		{"#/#", 2, 2, true},
		{"x/x#", 0, 1, false}, // '#' on either side forces port match
	}
	for _, tt := range tests {
		if got := flowConnects(tt.code, tt.i, tt.j); got != tt.want {
			t.Errorf("flowConnects(%q, %d, %d) = %v, want %v", tt.code, tt.i, tt.j, got, tt.want)
		}
	}
}

func TestDefaultAlignerHaveFlow(t *testing.T) {
	in := []alignment.Alignment{alignment.Make(4, 0), alignment.Make(4, 2)}
	out := make([]alignment.Alignment, 1)
	DefaultAligner().HaveFlow(in, out, "x/x")
	if !out[0].Equal(alignment.Make(2, 0)) {
		t.Errorf("joined output = %v, want 2/0", out[0])
	}

	out = make([]alignment.Alignment, 2)
	DefaultAligner().HaveFlow(in, out, "#/#")
	if !out[0].Equal(in[0]) || !out[1].Equal(in[1]) {
		t.Errorf("per-port flow produced %v, want inputs passed through", out)
	}

	DefaultAligner().HaveFlow(in[:1], out[:1], "x/y")
	if !out[0].IsBad() {
		t.Errorf("unrelated output = %v, want bad", out[0])
	}
}

func TestDefaultAlignerWantFlow(t *testing.T) {
	in := make([]alignment.Alignment, 1)
	out := []alignment.Alignment{alignment.Make(4, 0), alignment.Make(8, 0)}
	DefaultAligner().WantFlow(in, out, "x/x")
	if !in[0].Equal(alignment.Make(8, 0)) {
		t.Errorf("met requirement = %v, want 8/0", in[0])
	}

	out = []alignment.Alignment{alignment.Make(4, 0), alignment.Make(4, 2)}
	DefaultAligner().WantFlow(in, out, "x/x")
	if !in[0].IsBad() {
		t.Errorf("conflicting requirements met to %v, want bad", in[0])
	}
}

func TestShifterAligner(t *testing.T) {
	sh := ShifterAligner(14)
	in := []alignment.Alignment{alignment.Make(4, 2)}
	out := make([]alignment.Alignment, 1)
	sh.HaveFlow(in, out, "")
	if !out[0].Equal(alignment.Make(4, 0)) {
		t.Errorf("shifted have = %v, want 4/0", out[0])
	}

	out[0] = alignment.Make(4, 0)
	sh.WantFlow(in, out, "")
	if !in[0].Equal(alignment.Make(4, 2)) {
		t.Errorf("shifted want = %v, want 4/2", in[0])
	}
}

func TestGeneratorAligner(t *testing.T) {
	g := GeneratorAligner(alignment.Make(4, 2))
	in := []alignment.Alignment{alignment.Make(8, 0)}
	out := make([]alignment.Alignment, 2)
	g.HaveFlow(in, out, "")
	if !out[0].Equal(alignment.Make(4, 2)) || !out[1].Equal(alignment.Make(4, 2)) {
		t.Errorf("generator have = %v, want 4/2 on every output", out)
	}
	out[0] = alignment.Make(8, 0)
	g.WantFlow(in, out, "")
	if !in[0].IsBad() {
		t.Errorf("generator want = %v, want bad", in[0])
	}
}

func TestWantAligner(t *testing.T) {
	wa := WantAligner(alignment.Make(4, 2))
	in := make([]alignment.Alignment, 2)
	out := make([]alignment.Alignment, 1)
	wa.WantFlow(in, out, "x/x")
	if !in[0].Equal(alignment.Make(4, 2)) || !in[1].Equal(alignment.Make(4, 2)) {
		t.Errorf("want = %v, want 4/2 on every input", in)
	}
	// guarantees still pass through like the default rule
	in = []alignment.Alignment{alignment.Make(8, 0)}
	wa.HaveFlow(in, out, "x/x")
	if !out[0].Equal(alignment.Make(8, 0)) {
		t.Errorf("have = %v, want pass-through 8/0", out[0])
	}
}

func TestCombinedAligner(t *testing.T) {
	c := CombinedAligner(ShifterAligner(14), WantAligner(alignment.Make(4, 2)))
	in := []alignment.Alignment{alignment.Make(4, 2)}
	out := make([]alignment.Alignment, 1)
	c.HaveFlow(in, out, "")
	if !out[0].Equal(alignment.Make(4, 0)) {
		t.Errorf("combined have = %v, want shifted 4/0", out[0])
	}
	c.WantFlow(in, out, "")
	if !in[0].Equal(alignment.Make(4, 2)) {
		t.Errorf("combined want = %v, want 4/2", in[0])
	}
}

func TestClassifierAdjustFlow(t *testing.T) {
	cl := ClassifierAligner()
	in := []alignment.Alignment{
		alignment.Make(8, 0),
		alignment.Make(2, 1),
		alignment.Bad(),
	}
	cl.AdjustFlow(in, nil)
	if !in[0].Equal(alignment.Make(8, 0)) {
		t.Errorf("chunk >= 4 rewritten to %v, want untouched 8/0", in[0])
	}
	if !in[1].Equal(alignment.Make(4, 1)) {
		t.Errorf("chunk < 4 adjusted to %v, want 4/1", in[1])
	}
	if !in[2].Equal(alignment.Make(4, 0)) {
		t.Errorf("bad adjusted to %v, want 4/0", in[2])
	}
}

func TestNullAligner(t *testing.T) {
	n := NullAligner()
	in := []alignment.Alignment{alignment.Make(4, 0)}
	out := []alignment.Alignment{alignment.Make(4, 0)}
	n.HaveFlow(in, out, "")
	n.WantFlow(in, out, "")
	if !out[0].IsBad() || !in[0].IsBad() {
		t.Errorf("null rule left %v / %v, want bad / bad", in[0], out[0])
	}
}

func TestAlignerFor(t *testing.T) {
	if _, ok := AlignerFor("Align", "4, 2").(generatorAligner); !ok {
		t.Error("Align did not map to a generator rule")
	}
	if _, ok := AlignerFor("Align", "garbage").(defaultAligner); !ok {
		t.Error("malformed Align config did not degrade to the default rule")
	}
	if _, ok := AlignerFor("Strip", "14").(shifterAligner); !ok {
		t.Error("Strip did not map to a shifter rule")
	}
	if _, ok := AlignerFor("Idle", "").(nullAligner); !ok {
		t.Error("Idle did not map to the null rule")
	}
	if _, ok := AlignerFor("SomeUnknownType", "").(defaultAligner); !ok {
		t.Error("unknown type did not map to the default rule")
	}

	g := AlignerFor("FromDevice", "eth0").(generatorAligner)
	if !g.a.Equal(alignment.Make(4, 2)) {
		t.Errorf("FromDevice generates %v, want 4/2", g.a)
	}
	w := AlignerFor("CheckIPHeader", "INTERFACES, 2").(wantAligner)
	if !w.a.Equal(alignment.Make(4, 2)) {
		t.Errorf("CheckIPHeader with offset 2 wants %v, want 4/2", w.a)
	}
	w = AlignerFor("MarkIPHeader", "").(wantAligner)
	if !w.a.Equal(alignment.Make(4, 0)) {
		t.Errorf("MarkIPHeader wants %v, want 4/0", w.a)
	}
}
