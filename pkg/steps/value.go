package steps

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Axis 坐标轴
type Axis string

const (
	AxisX Axis = "x"
	AxisY Axis = "y"
)

// ValueKind 坐标参数的取值形式
type ValueKind int

const (
	// ValueUnset 参数未提供
	ValueUnset ValueKind = iota
	// ValueLiteral 绝对数值
	ValueLiteral
	// ValueOffset 相对偏移 "+100" / "-50"，相对于步骤所指单位的当前位置
	ValueOffset
	// ValueRef 表达式 "<unit>.x + 20"，引用任意单位的当前位置
	ValueRef
	// ValueUnresolved 无法解析的值，执行时告警并忽略该参数
	ValueUnresolved
)

func (k ValueKind) String() string {
	switch k {
	case ValueUnset:
		return "unset"
	case ValueLiteral:
		return "literal"
	case ValueOffset:
		return "offset"
	case ValueRef:
		return "ref"
	case ValueUnresolved:
		return "unresolved"
	}
	return fmt.Sprintf("ValueKind(%d)", int(k))
}

// Value 坐标参数
//
// 数值在解码时确定形式，真正的坐标在执行时根据单位的实时位置求出。
type Value struct {
	Kind ValueKind
	Num  float64 // 字面量或偏移量
	Ref  string  // ValueRef 引用的单位（可以是 self/target 等别名）
	Axis Axis    // ValueRef 引用的轴
	Raw  string  // 原始字符串，用于告警信息
}

// Literal 构造绝对坐标
func Literal(n float64) Value { return Value{Kind: ValueLiteral, Num: n} }

// Offset 构造相对偏移
func Offset(n float64) Value { return Value{Kind: ValueOffset, Num: n} }

// IsSet 参数是否提供（包括无法解析的值）
func (v Value) IsSet() bool { return v.Kind != ValueUnset }

var refPattern = regexp.MustCompile(`^([A-Za-z_][\w-]*)\.([xXyY])\s*(?:([+-])\s*(\d+(?:\.\d+)?|\.\d+))?$`)

// ParseValue 解析坐标参数
//
// 规则：
//   - 数值：绝对坐标
//   - 以 "+" 或 "-" 开头的字符串：相对偏移
//   - "<unit>.x"、"<unit>.y ± n"：引用单位坐标的表达式
//   - 其他字符串：按绝对数值解析，失败则为 ValueUnresolved
func ParseValue(v any) Value {
	if v == nil {
		return Value{}
	}
	if n, ok := toNumber(v); ok {
		return Literal(n)
	}

	s, ok := v.(string)
	if !ok {
		return Value{Kind: ValueUnresolved, Raw: fmt.Sprint(v)}
	}
	raw := s
	s = strings.TrimSpace(s)
	if s == "" {
		return Value{}
	}

	if s[0] == '+' || s[0] == '-' {
		n, err := strconv.ParseFloat(strings.TrimSpace(s[1:]), 64)
		if err != nil || !finite(n) {
			return Value{Kind: ValueUnresolved, Raw: raw}
		}
		if s[0] == '-' {
			n = -n
		}
		return Value{Kind: ValueOffset, Num: n, Raw: raw}
	}

	if m := refPattern.FindStringSubmatch(s); m != nil {
		val := Value{Kind: ValueRef, Ref: m[1], Axis: Axis(strings.ToLower(m[2])), Raw: raw}
		if m[3] != "" {
			n, _ := strconv.ParseFloat(m[4], 64)
			if m[3] == "-" {
				n = -n
			}
			val.Num = n
		}
		return val
	}

	n, err := strconv.ParseFloat(s, 64)
	if err != nil || !finite(n) {
		return Value{Kind: ValueUnresolved, Raw: raw}
	}
	return Value{Kind: ValueLiteral, Num: n, Raw: raw}
}

// PositionLookup 查询单位当前位置
type PositionLookup func(unitID string) (x, y float64, ok bool)

// Resolve 求出坐标值
//
// 参数：
//   - lookup: 单位位置查询（每次调用都读取实时位置）
//   - anchor: ValueOffset 相对的单位
//   - axis: 当前参数所在的轴
//   - alias: 别名解析（self/target），可以为 nil
//
// 返回：
//   - float64: 坐标
//   - bool: 是否成功求值；未提供或无法解析时为 false
func (v Value) Resolve(lookup PositionLookup, anchor string, axis Axis, alias func(string) string) (float64, bool) {
	switch v.Kind {
	case ValueLiteral:
		return v.Num, true
	case ValueOffset:
		base, ok := axisOf(lookup, resolveAlias(alias, anchor), axis)
		if !ok {
			return 0, false
		}
		return base + v.Num, true
	case ValueRef:
		base, ok := axisOf(lookup, resolveAlias(alias, v.Ref), v.Axis)
		if !ok {
			return 0, false
		}
		return base + v.Num, true
	}
	return 0, false
}

func resolveAlias(alias func(string) string, id string) string {
	if alias == nil {
		return id
	}
	return alias(id)
}

func axisOf(lookup PositionLookup, unitID string, axis Axis) (float64, bool) {
	if lookup == nil || unitID == "" {
		return 0, false
	}
	x, y, ok := lookup(unitID)
	if !ok {
		return 0, false
	}
	if axis == AxisY {
		return y, true
	}
	return x, true
}
