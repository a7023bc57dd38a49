package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// BattleConfigPath 战斗配置的默认位置
const BattleConfigPath = "data/battle.yaml"

// 阵营
const (
	SidePlayer = "player"
	SideEnemy  = "enemy"
)

// DefaultMaxSummons 每个阵营同时存在的召唤物上限
const DefaultMaxSummons = 4

// UnitTemplate 战斗单位模板
type UnitTemplate struct {
	ID      string   `yaml:"id"`
	Name    string   `yaml:"name"`
	Side    string   `yaml:"side"` // "player" 或 "enemy"
	HP      int      `yaml:"hp"`
	MP      int      `yaml:"mp"`
	Attack  int      `yaml:"attack"`
	Defense int      `yaml:"defense"`
	X       float64  `yaml:"x"` // 站位（世界坐标）
	Y       float64  `yaml:"y"`
	Skills  []string `yaml:"skills"`
}

// SkillDef 技能定义
type SkillDef struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	MPCost int    `yaml:"mpCost"`
	Power  int    `yaml:"power"`  // 伤害倍率（百分比），100 表示与普通攻击相同
	Heal   bool   `yaml:"heal"`   // true 表示治疗技能
	Script string `yaml:"script"` // 技能演出文档路径（时间轴文档）
}

// ItemDef 道具定义
type ItemDef struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	HealHP    int    `yaml:"healHP"`
	RestoreMP int    `yaml:"restoreMP"`
	Count     int    `yaml:"count"` // 初始持有数量
}

// BattleConfig 战斗规则配置
//
// 配置文件位置: data/battle.yaml
type BattleConfig struct {
	// MaxSummons 每个阵营的召唤物上限
	MaxSummons int `yaml:"maxSummons"`

	// EscapeChance 逃跑成功率 [0, 1]
	EscapeChance float64 `yaml:"escapeChance"`

	// SummonSpacing 召唤物之间的水平间距（像素）
	SummonSpacing float64 `yaml:"summonSpacing"`

	Units   []UnitTemplate `yaml:"units"`
	Summons []UnitTemplate `yaml:"summons"`
	Skills  []SkillDef     `yaml:"skills"`
	Items   []ItemDef      `yaml:"items"`
}

// LoadBattleConfig 加载战斗配置
func LoadBattleConfig(path string) (*BattleConfig, error) {
	data, err := readConfigData(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read battle config file %s: %w", path, err)
	}

	var cfg BattleConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse battle config YAML from %s: %w", path, err)
	}

	applyBattleDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid battle config in %s: %w", path, err)
	}
	return &cfg, nil
}

func applyBattleDefaults(cfg *BattleConfig) {
	if cfg.MaxSummons == 0 {
		cfg.MaxSummons = DefaultMaxSummons
	}
	if cfg.SummonSpacing == 0 {
		cfg.SummonSpacing = 60
	}
	for i := range cfg.Units {
		applyUnitDefaults(&cfg.Units[i])
	}
	for i := range cfg.Summons {
		applyUnitDefaults(&cfg.Summons[i])
	}
	for i := range cfg.Skills {
		if cfg.Skills[i].Power == 0 {
			cfg.Skills[i].Power = 100
		}
	}
}

func applyUnitDefaults(u *UnitTemplate) {
	if u.Name == "" {
		u.Name = u.ID
	}
	if u.Side == "" {
		u.Side = SidePlayer
	}
	if u.HP == 0 {
		u.HP = 100
	}
}

// Validate 验证战斗配置
func (c *BattleConfig) Validate() error {
	if c.MaxSummons < 0 {
		return fmt.Errorf("maxSummons must be >= 0, got %d", c.MaxSummons)
	}
	if c.EscapeChance < 0 || c.EscapeChance > 1 {
		return fmt.Errorf("escapeChance must be in [0, 1], got %.2f", c.EscapeChance)
	}

	seen := make(map[string]bool)
	for _, u := range append(append([]UnitTemplate{}, c.Units...), c.Summons...) {
		if u.ID == "" {
			return fmt.Errorf("unit template missing id")
		}
		if seen[u.ID] {
			return fmt.Errorf("duplicate unit id '%s'", u.ID)
		}
		seen[u.ID] = true
		if u.Side != SidePlayer && u.Side != SideEnemy {
			return fmt.Errorf("unit '%s' has invalid side '%s'", u.ID, u.Side)
		}
		if u.HP < 0 || u.MP < 0 {
			return fmt.Errorf("unit '%s' has negative hp/mp", u.ID)
		}
	}
	for _, s := range c.Skills {
		if s.ID == "" {
			return fmt.Errorf("skill definition missing id")
		}
		if s.MPCost < 0 {
			return fmt.Errorf("skill '%s' has negative mpCost", s.ID)
		}
	}
	return nil
}

// Skill 按 ID 查找技能
func (c *BattleConfig) Skill(id string) (SkillDef, bool) {
	for _, s := range c.Skills {
		if s.ID == id {
			return s, true
		}
	}
	return SkillDef{}, false
}

// Summon 按 ID 查找召唤物模板
func (c *BattleConfig) Summon(id string) (UnitTemplate, bool) {
	for _, s := range c.Summons {
		if s.ID == id {
			return s, true
		}
	}
	return UnitTemplate{}, false
}

// Item 按 ID 查找道具
func (c *BattleConfig) Item(id string) (ItemDef, bool) {
	for _, it := range c.Items {
		if it.ID == id {
			return it, true
		}
	}
	return ItemDef{}, false
}
