package typ

import "testing"

func TestType_Equal(t *testing.T) {
	cases := []struct {
		name  string
		a, b  Type
		equal bool
	}{
		{"int==int", Int(), Int(), true},
		{"int!=float", Int(), Flt(), false},
		{"array same", Arr(Int(), 3), Arr(Int(), 3), true},
		{"array different size", Arr(Int(), 3), Arr(Int(), 4), false},
		{"struct same name", Struct("Point"), Struct("Point"), true},
		{"struct different name", Struct("Point"), Struct("Vector"), false},
		{"tuple same", Tup(Int(), Bool()), Tup(Int(), Bool()), true},
		{"tuple different arity", Tup(Int()), Tup(Int(), Bool()), false},
		{"option same", Opt(Int()), Opt(Int()), true},
		{"abstract same", Abstract([]Type{Int(), Int()}, Bool()), Abstract([]Type{Int(), Int()}, Bool()), true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.a.Equal(c.b); got != c.equal {
				t.Errorf("Equal(%s, %s) = %v, want %v", c.a, c.b, got, c.equal)
			}
		})
	}
}

func TestConstant_EqualBitExact(t *testing.T) {
	zero := ConstantFloat(0.0)
	negZero := ConstantFloat(float32(-0.0) * -1 * -1) // still +0, so flip sign explicitly below
	negZero.FloatValue = -negZero.FloatValue

	if zero.Equal(negZero) {
		t.Errorf("expected +0.0 and -0.0 to compare unequal under bit-exact equality")
	}

	a := ConstantFloat(1.5)
	b := ConstantFloat(1.5)
	if !a.Equal(b) {
		t.Errorf("expected equal float constants to compare equal")
	}
}

func TestConstant_Type(t *testing.T) {
	c := ConstantEnum("Color", "Red")
	got := c.Type()
	want := Enum("Color")
	if !got.Equal(want) {
		t.Errorf("Type() = %s, want %s", got, want)
	}
}
