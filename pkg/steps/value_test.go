package steps

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		kind ValueKind
		num  float64
		ref  string
		axis Axis
	}{
		{"nil", nil, ValueUnset, 0, "", ""},
		{"empty string", "  ", ValueUnset, 0, "", ""},
		{"int literal", 120, ValueLiteral, 120, "", ""},
		{"negative float literal", -3.5, ValueLiteral, -3.5, "", ""},
		{"positive offset", "+100", ValueOffset, 100, "", ""},
		{"negative offset", "-50", ValueOffset, -50, "", ""},
		{"offset with space", "+ 12.5", ValueOffset, 12.5, "", ""},
		{"numeric string", "240", ValueLiteral, 240, "", ""},
		{"ref without offset", "target.x", ValueRef, 0, "target", AxisX},
		{"ref with offset", "hero.y - 30", ValueRef, -30, "hero", AxisY},
		{"ref upper axis", "self.X+8", ValueRef, 8, "self", AxisX},
		{"garbage", "left of hero", ValueUnresolved, 0, "", ""},
		{"bad offset", "+abc", ValueUnresolved, 0, "", ""},
		{"unsupported type", []int{1}, ValueUnresolved, 0, "", ""},
		{"NaN string", "NaN", ValueUnresolved, 0, "", ""},
		{"infinity string", "Infinity", ValueUnresolved, 0, "", ""},
		{"infinite offset", "-Inf", ValueUnresolved, 0, "", ""},
		{"NaN number", math.NaN(), ValueUnresolved, 0, "", ""},
		{"infinite number", math.Inf(1), ValueUnresolved, 0, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := ParseValue(tt.in)
			assert.Equal(t, tt.kind, v.Kind)
			assert.InDelta(t, tt.num, v.Num, 1e-9)
			assert.Equal(t, tt.ref, v.Ref)
			assert.Equal(t, tt.axis, v.Axis)
		})
	}
}

func TestResolveReadsLivePosition(t *testing.T) {
	pos := map[string][2]float64{"hero": {100, 200}}
	lookup := func(id string) (float64, float64, bool) {
		p, ok := pos[id]
		return p[0], p[1], ok
	}

	off := ParseValue("+50")
	x, ok := off.Resolve(lookup, "hero", AxisX, nil)
	assert.True(t, ok)
	assert.Equal(t, 150.0, x)

	// 位置变化后重新求值得到新结果
	pos["hero"] = [2]float64{300, 200}
	x, _ = off.Resolve(lookup, "hero", AxisX, nil)
	assert.Equal(t, 350.0, x)

	y, ok := off.Resolve(lookup, "hero", AxisY, nil)
	assert.True(t, ok)
	assert.Equal(t, 250.0, y)
}

func TestResolveRefWithAlias(t *testing.T) {
	lookup := func(id string) (float64, float64, bool) {
		if id == "slime" {
			return 640, 300, true
		}
		return 0, 0, false
	}
	b := Bindings{"target": "slime"}

	v := ParseValue("target.x - 40")
	x, ok := v.Resolve(lookup, "", AxisY, b.Resolve)
	assert.True(t, ok)
	assert.Equal(t, 600.0, x, "ref uses its own axis, not the parameter axis")

	_, ok = ParseValue("ghost.y").Resolve(lookup, "", AxisY, b.Resolve)
	assert.False(t, ok)
}

func TestResolveFailures(t *testing.T) {
	assert.False(t, func() bool { _, ok := Value{}.Resolve(nil, "", AxisX, nil); return ok }())
	assert.False(t, func() bool { _, ok := ParseValue("??").Resolve(nil, "", AxisX, nil); return ok }())
	// 偏移需要锚点单位
	_, ok := ParseValue("+10").Resolve(nil, "hero", AxisX, nil)
	assert.False(t, ok)

	n, ok := Literal(7).Resolve(nil, "", AxisX, nil)
	assert.True(t, ok)
	assert.Equal(t, 7.0, n)
}
