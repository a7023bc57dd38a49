package utils

import (
	"strings"

	"github.com/tanema/gween/ease"
)

// Easing Functions (缓动函数)
//
// 技能步骤中的 ease 参数是字符串，例如 "Linear"、"Quad.easeOut"、"easeInOutCubic"、
// "power2.out"。这里把这些写法统一映射到 gween/ease 的 TweenFunc。
//
// 参考：https://easings.net/

// DefaultEase 未指定或无法识别时使用的缓动
const DefaultEase = "linear"

var easeRegistry = map[string]ease.TweenFunc{
	"linear": ease.Linear,

	"inquad":    ease.InQuad,
	"outquad":   ease.OutQuad,
	"inoutquad": ease.InOutQuad,
	"outinquad": ease.OutInQuad,

	"incubic":    ease.InCubic,
	"outcubic":   ease.OutCubic,
	"inoutcubic": ease.InOutCubic,
	"outincubic": ease.OutInCubic,

	"inquart":    ease.InQuart,
	"outquart":   ease.OutQuart,
	"inoutquart": ease.InOutQuart,
	"outinquart": ease.OutInQuart,

	"inquint":    ease.InQuint,
	"outquint":   ease.OutQuint,
	"inoutquint": ease.InOutQuint,
	"outinquint": ease.OutInQuint,

	"insine":    ease.InSine,
	"outsine":   ease.OutSine,
	"inoutsine": ease.InOutSine,
	"outinsine": ease.OutInSine,

	"inexpo":    ease.InExpo,
	"outexpo":   ease.OutExpo,
	"inoutexpo": ease.InOutExpo,
	"outinexpo": ease.OutInExpo,

	"incirc":    ease.InCirc,
	"outcirc":   ease.OutCirc,
	"inoutcirc": ease.InOutCirc,
	"outincirc": ease.OutInCirc,

	"inelastic":    ease.InElastic,
	"outelastic":   ease.OutElastic,
	"inoutelastic": ease.InOutElastic,
	"outinelastic": ease.OutInElastic,

	"inback":    ease.InBack,
	"outback":   ease.OutBack,
	"inoutback": ease.InOutBack,
	"outinback": ease.OutInBack,

	"inbounce":    ease.InBounce,
	"outbounce":   ease.OutBounce,
	"inoutbounce": ease.InOutBounce,
	"outinbounce": ease.OutInBounce,
}

// power 写法的幂次对应关系 (power1=quad ... power4=quint)
var powerFamilies = map[string]string{
	"power0": "linear",
	"power1": "quad",
	"power2": "cubic",
	"power3": "quart",
	"power4": "quint",
}

// normalizeEaseName 把各种缓动写法规整为注册表的键
//
// 支持的写法：
//
//	"Quad.easeOut"   -> "outquad"
//	"easeInOutCubic" -> "inoutcubic"
//	"power2.out"     -> "outcubic"
//	"OutBack"        -> "outback"
func normalizeEaseName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.ReplaceAll(n, "-", "")
	n = strings.ReplaceAll(n, "_", "")
	if n == "" {
		return DefaultEase
	}

	// "family.direction" 形式
	if family, dir, ok := strings.Cut(n, "."); ok {
		if mapped, exists := powerFamilies[family]; exists {
			family = mapped
		}
		if family == "linear" {
			return "linear"
		}
		dir = strings.TrimPrefix(dir, "ease")
		if dir == "" {
			dir = "out"
		}
		return dir + family
	}

	if mapped, exists := powerFamilies[n]; exists {
		if mapped == "linear" {
			return "linear"
		}
		return "out" + mapped
	}

	n = strings.TrimPrefix(n, "ease")
	if n == "" || n == "none" {
		return DefaultEase
	}
	return n
}

// EaseByName 根据名称查找缓动函数
//
// 参数：
//   - name: 缓动名称，大小写和分隔符不敏感
//
// 返回：
//   - ease.TweenFunc: 缓动函数，找不到时为线性缓动
//   - bool: 名称是否被识别
func EaseByName(name string) (ease.TweenFunc, bool) {
	if fn, ok := easeRegistry[normalizeEaseName(name)]; ok {
		return fn, true
	}
	return ease.Linear, false
}

// Ease 计算归一化进度 t ∈ [0, 1] 在指定缓动下的值
func Ease(name string, t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	fn, _ := EaseByName(name)
	return float64(fn(float32(t), 0, 1, 1))
}

// Lerp 线性插值
// 在 a 和 b 之间根据 t 插值
// t=0 返回 a，t=1 返回 b
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
