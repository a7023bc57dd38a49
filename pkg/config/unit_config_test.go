package config

import (
	"strings"
	"testing"
)

func TestLoadBattleConfig(t *testing.T) {
	path := writeTempConfig(t, "battle.yaml", `
escapeChance: 0.5
units:
  - id: hero
    hp: 120
    mp: 30
    attack: 20
    x: 200
    y: 300
    skills: [fireball]
  - id: slime
    side: enemy
summons:
  - id: wisp
    hp: 20
skills:
  - id: fireball
    mpCost: 10
    script: data/skills/fireball.yaml
items:
  - id: potion
    healHP: 50
    count: 3
`)

	cfg, err := LoadBattleConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MaxSummons != DefaultMaxSummons {
		t.Errorf("expected default maxSummons %d, got %d", DefaultMaxSummons, cfg.MaxSummons)
	}
	if cfg.Units[1].HP != 100 || cfg.Units[1].Name != "slime" {
		t.Errorf("unit defaults not applied: %+v", cfg.Units[1])
	}
	if cfg.Units[0].Side != SidePlayer {
		t.Errorf("expected default side player, got %q", cfg.Units[0].Side)
	}

	skill, ok := cfg.Skill("fireball")
	if !ok || skill.Power != 100 || skill.MPCost != 10 {
		t.Errorf("unexpected skill %+v", skill)
	}
	if _, ok := cfg.Summon("wisp"); !ok {
		t.Error("wisp summon should exist")
	}
	if item, ok := cfg.Item("potion"); !ok || item.Count != 3 {
		t.Errorf("unexpected item %+v", item)
	}
}

func TestBattleConfigValidation(t *testing.T) {
	tests := []struct {
		name        string
		yamlContent string
		errContains string
	}{
		{"escape chance out of range", "escapeChance: 1.5\n", "escapeChance"},
		{"duplicate unit", "units:\n  - id: a\n  - id: a\n", "duplicate unit id"},
		{"bad side", "units:\n  - id: a\n    side: neutral\n", "invalid side"},
		{"missing skill id", "skills:\n  - name: x\n", "skill definition missing id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTempConfig(t, "battle.yaml", tt.yamlContent)
			_, err := LoadBattleConfig(path)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("error %q should contain %q", err.Error(), tt.errContains)
			}
		})
	}
}
