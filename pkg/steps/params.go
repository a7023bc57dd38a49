package steps

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// toNumber 把参数值转换为 float64，只接受有限的数值
func toNumber(v any) (float64, bool) {
	f, ok := rawNumber(v)
	if !ok || !finite(f) {
		return 0, false
	}
	return f, true
}

func rawNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// finite NaN 和 ±Inf 不能作为坐标或时长
func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// paramNumber 读取数值参数，数值字符串也会被接受
func paramNumber(params map[string]any, key string) (float64, bool) {
	v, ok := params[key]
	if !ok || v == nil {
		return 0, false
	}
	if n, ok := toNumber(v); ok {
		return n, true
	}
	if s, ok := v.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || !finite(f) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// paramFloat 读取数值参数，缺失或无法解析时返回默认值
func paramFloat(params map[string]any, key string, def float64) float64 {
	if n, ok := paramNumber(params, key); ok {
		return n
	}
	return def
}

// paramString 按顺序读取第一个非空字符串参数
func paramString(params map[string]any, keys ...string) string {
	for _, key := range keys {
		switch v := params[key].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case int, int64, float64:
			// 数字 ID 也视为字符串
			n, _ := toNumber(v)
			return strconv.FormatFloat(n, 'f', -1, 64)
		}
	}
	return ""
}

// paramBool 读取布尔参数，接受 true/false 以及 "true"/"1"
func paramBool(params map[string]any, key string) bool {
	switch v := params[key].(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return err == nil && b
	}
	if n, ok := toNumber(params[key]); ok {
		return n != 0
	}
	return false
}

// paramDuration 读取毫秒参数并转换为 time.Duration，负值按 0 处理
func paramDuration(params map[string]any, key string, def time.Duration) time.Duration {
	ms, ok := paramNumber(params, key)
	if !ok {
		return def
	}
	if ms <= 0 {
		return 0
	}
	return time.Duration(ms * float64(time.Millisecond))
}
