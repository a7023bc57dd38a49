package components

// HealthComponent 存储单位的生命值
type HealthComponent struct {
	CurrentHealth int // 当前生命值
	MaxHealth     int // 最大生命值
}

// IsDead 生命值是否耗尽
func (h *HealthComponent) IsDead() bool {
	return h.CurrentHealth <= 0
}

// Apply 按差值修改生命值，结果限制在 [0, MaxHealth]
//
// 参数：
//   - delta: 正数为治疗，负数为伤害
//
// 返回：
//   - int: 实际变化量
func (h *HealthComponent) Apply(delta int) int {
	before := h.CurrentHealth
	h.CurrentHealth += delta
	if h.CurrentHealth < 0 {
		h.CurrentHealth = 0
	}
	if h.CurrentHealth > h.MaxHealth {
		h.CurrentHealth = h.MaxHealth
	}
	return h.CurrentHealth - before
}
