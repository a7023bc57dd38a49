package game

import (
	"context"
	"testing"
	"time"

	"github.com/gonewx/battleskill/pkg/config"
	"github.com/gonewx/battleskill/pkg/steps"
)

// drive 在后台持续推进场景，直到测试结束
func drive(t *testing.T, scene *BattleScene) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ctx.Err() == nil {
			scene.Update(1.0 / 60)
			time.Sleep(100 * time.Microsecond)
		}
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func isDone(h steps.Handle) bool {
	select {
	case <-h:
		return true
	default:
		return false
	}
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func testBattleConfig() *config.BattleConfig {
	return &config.BattleConfig{
		MaxSummons:    2,
		EscapeChance:  0.5,
		SummonSpacing: 50,
		Units: []config.UnitTemplate{
			{ID: "hero", Name: "Hero", Side: config.SidePlayer, HP: 100, MP: 20, Attack: 30, Defense: 10, X: 200, Y: 300},
			{ID: "slime", Name: "Slime", Side: config.SideEnemy, HP: 60, Attack: 12, Defense: 4, X: 600, Y: 300},
		},
		Summons: []config.UnitTemplate{
			{ID: "wisp", Name: "Wisp", Side: config.SidePlayer, HP: 20, Attack: 5, X: 140, Y: 360},
		},
		Skills: []config.SkillDef{
			{ID: "fire", Name: "Fire", MPCost: 8, Power: 150},
			{ID: "heal", Name: "Heal", MPCost: 5, Power: 100, Heal: true},
			{ID: "meteor", Name: "Meteor", MPCost: 50, Power: 300},
		},
		Items: []config.ItemDef{
			{ID: "potion", Name: "Potion", HealHP: 30, Count: 1},
			{ID: "ether", Name: "Ether", RestoreMP: 10, Count: 1},
		},
	}
}

func testLibrary() *config.ResourceLibrary {
	return &config.ResourceLibrary{
		Effects: map[string]config.EffectDef{
			"slash":  {Name: "slash", Frames: 4, FPS: 30, Duration: 0.15, Scale: 1, Radius: 20},
			"summon": {Name: "summon", Frames: 8, FPS: 30, Duration: 0.3, Scale: 1, Radius: 30},
		},
		Sounds: map[string]config.SoundDef{
			"hit": {Name: "hit", Volume: 1, Duration: 0.2},
		},
	}
}
