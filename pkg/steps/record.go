// Package steps 定义技能演出步骤及其执行器
//
// 技能脚本由一串声明式步骤组成（移动、伤害数字、特效、等待、镜头、震屏、
// 背景、音效）。步骤以 Record 的形式保存和序列化，执行前通过 Decode
// 转换为具体的步骤类型，再由 Executor 针对注入的场景接口逐一执行。
package steps

import "maps"

// Kind 步骤类型
type Kind string

const (
	KindMove       Kind = "move"
	KindDamage     Kind = "damage"
	KindEffect     Kind = "effect"
	KindWait       Kind = "wait"
	KindCamera     Kind = "camera"
	KindShake      Kind = "shake"
	KindBackground Kind = "background"
	KindSound      Kind = "sound"
)

// Kinds 所有步骤类型，按编辑器素材库的展示顺序排列
var Kinds = []Kind{
	KindMove, KindDamage, KindEffect, KindWait,
	KindCamera, KindShake, KindBackground, KindSound,
}

// Valid 是否为已知的步骤类型
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Record 步骤的序列化形式 {id, type, params}
type Record struct {
	ID     string         `json:"id" yaml:"id"`
	Type   Kind           `json:"type" yaml:"type"`
	Params map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
}

// Clone 返回参数表独立的副本
func (r Record) Clone() Record {
	c := r
	if r.Params != nil {
		c.Params = maps.Clone(r.Params)
	}
	return c
}

// DurationParam 返回该类型步骤表示时长的参数名（毫秒）
//
// wait 使用 delay，其余有时长概念的步骤使用 duration；
// damage 和 sound 没有时长参数。
func (k Kind) DurationParam() string {
	switch k {
	case KindWait:
		return "delay"
	case KindMove, KindEffect, KindCamera, KindShake, KindBackground:
		return "duration"
	}
	return ""
}

// DurationMs 读取步骤的时长参数（毫秒）
func (r Record) DurationMs() (float64, bool) {
	key := r.Type.DurationParam()
	if key == "" {
		return 0, false
	}
	return paramNumber(r.Params, key)
}
