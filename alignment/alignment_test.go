package alignment

import "testing"

func TestMakeNormalizes(t *testing.T) {
	if a := Make(4, 6); a.Chunk() != 4 || a.Offset() != 2 {
		t.Errorf("Make(4, 6) = %v, want 4/2", a)
	}
	if a := Make(4, -1); a.Chunk() != 4 || a.Offset() != 3 {
		t.Errorf("Make(4, -1) = %v, want 4/3", a)
	}
	if a := Make(1, 0); !a.IsBad() {
		t.Errorf("Make(1, 0) = %v, want bad", a)
	}
	if a := Make(0, 5); !a.IsBad() {
		t.Errorf("Make(0, 5) = %v, want bad", a)
	}
}

func TestLessEq(t *testing.T) {
	tests := []struct {
		have, want Alignment
		ok         bool
	}{
		{Make(4, 0), Make(4, 0), true},
		{Make(8, 0), Make(4, 0), true},
		{Make(8, 2), Make(4, 2), true},
		{Make(8, 6), Make(4, 2), true},
		{Make(4, 0), Make(8, 0), false},
		{Make(4, 2), Make(4, 0), false},
		{Make(2, 0), Make(4, 0), false},
		{Make(4, 0), Bad(), true},
		{Bad(), Make(4, 0), false},
		{Bad(), Bad(), true},
	}
	for _, tt := range tests {
		if got := tt.have.LessEq(tt.want); got != tt.ok {
			t.Errorf("LessEq(%v, %v) = %v, want %v", tt.have, tt.want, got, tt.ok)
		}
	}
}

func TestWeaken(t *testing.T) {
	tests := []struct {
		a, b, want Alignment
	}{
		{Make(4, 0), Make(4, 0), Make(4, 0)},
		{Make(4, 0), Make(8, 0), Make(4, 0)},
		{Make(8, 0), Make(4, 0), Make(4, 0)},
		{Make(4, 2), Make(8, 2), Make(4, 2)},
		{Make(4, 0), Make(4, 2), Make(2, 0)},
		{Make(4, 1), Make(4, 3), Make(2, 1)},
		{Make(4, 0), Make(4, 1), Bad()},
		{Bad(), Make(4, 2), Make(4, 2)},
		{Make(4, 2), Bad(), Make(4, 2)},
		{Bad(), Bad(), Bad()},
	}
	for _, tt := range tests {
		a := tt.a
		a.Weaken(tt.b)
		if !a.Equal(tt.want) {
			t.Errorf("weaken(%v, %v) = %v, want %v", tt.a, tt.b, a, tt.want)
		}
	}
}

func TestStrengthen(t *testing.T) {
	tests := []struct {
		a, b, want Alignment
	}{
		{Make(4, 0), Make(4, 0), Make(4, 0)},
		{Make(4, 0), Make(8, 0), Make(8, 0)},
		{Make(8, 0), Make(4, 0), Make(8, 0)},
		{Make(4, 2), Make(8, 2), Make(8, 2)},
		{Make(2, 0), Make(8, 2), Make(8, 2)},
		{Make(4, 0), Make(4, 2), Bad()},
		{Make(4, 0), Make(8, 2), Bad()},
		{Bad(), Make(4, 2), Make(4, 2)},
		{Make(4, 2), Bad(), Make(4, 2)},
	}
	for _, tt := range tests {
		a := tt.a
		a.Strengthen(tt.b)
		if !a.Equal(tt.want) {
			t.Errorf("strengthen(%v, %v) = %v, want %v", tt.a, tt.b, a, tt.want)
		}
	}
}

// The combination operators must be idempotent, commutative, and associative
// over the whole value space, including both Bad forms.
func TestLatticeLaws(t *testing.T) {
	values := []Alignment{
		Bad(), impossible(),
		Make(2, 0), Make(2, 1),
		Make(4, 0), Make(4, 1), Make(4, 2), Make(4, 3),
		Make(8, 0), Make(8, 2), Make(8, 6),
	}
	weaken := func(a, b Alignment) Alignment { a.Weaken(b); return a }
	strengthen := func(a, b Alignment) Alignment { a.Strengthen(b); return a }
	ops := []struct {
		name string
		op   func(a, b Alignment) Alignment
	}{
		{"weaken", weaken},
		{"strengthen", strengthen},
	}

	for _, o := range ops {
		for _, a := range values {
			if got := o.op(a, a); !got.Equal(a) {
				t.Errorf("%s(%v, %v) = %v, not idempotent", o.name, a, a, got)
			}
			for _, b := range values {
				ab, ba := o.op(a, b), o.op(b, a)
				if !ab.Equal(ba) {
					t.Errorf("%s not commutative: %v op %v = %v, %v op %v = %v",
						o.name, a, b, ab, b, a, ba)
				}
				for _, c := range values {
					left := o.op(o.op(a, b), c)
					right := o.op(a, o.op(b, c))
					if !left.Equal(right) {
						t.Errorf("%s not associative at (%v, %v, %v): %v vs %v",
							o.name, a, b, c, left, right)
					}
				}
			}
		}
	}
}

func TestWeakenReportsChange(t *testing.T) {
	a := Make(4, 0)
	if a.Weaken(Make(4, 0)) {
		t.Error("weaken with an equal value reported a change")
	}
	if !a.Weaken(Make(4, 2)) {
		t.Error("weaken to a coarser value reported no change")
	}
	b := Bad()
	if b.Weaken(Bad()) {
		t.Error("weaken of bad with bad reported a change")
	}
}

func TestShift(t *testing.T) {
	if got := Make(4, 0).Shift(2); !got.Equal(Make(4, 2)) {
		t.Errorf("shift(4/0, 2) = %v, want 4/2", got)
	}
	if got := Make(4, 2).Shift(-14); !got.Equal(Make(4, 0)) {
		t.Errorf("shift(4/2, -14) = %v, want 4/0", got)
	}
	if got := Make(4, 2).Shift(14); !got.Equal(Make(4, 0)) {
		t.Errorf("shift(4/2, 14) = %v, want 4/0", got)
	}
	if got := Bad().Shift(3); !got.IsBad() {
		t.Errorf("shift(bad, 3) = %v, want bad", got)
	}
}

func TestString(t *testing.T) {
	if s := Make(4, 2).String(); s != "4/2" {
		t.Errorf("String() = %q, want %q", s, "4/2")
	}
	if s := Bad().String(); s != "-" {
		t.Errorf("String() = %q, want %q", s, "-")
	}
}
