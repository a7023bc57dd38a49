package game

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/looplab/fsm"

	"github.com/gonewx/battleskill/pkg/components"
	"github.com/gonewx/battleskill/pkg/config"
	"github.com/gonewx/battleskill/pkg/steps"
	"github.com/gonewx/battleskill/pkg/timeline"
)

// 战斗阶段
const (
	PhaseCommand = "command" // 等待指令
	PhaseActing  = "acting"  // 正在结算/演出
	PhaseVictory = "victory"
	PhaseDefeat  = "defeat"
	PhaseEscaped = "escaped"
)

// 阶段事件
const (
	eventAct     = "act"
	eventResolve = "resolve"
	eventWin     = "win"
	eventLose    = "lose"
	eventFlee    = "flee"
)

// ScriptLoader 加载技能的演出时间轴，返回 nil 文档表示没有演出
type ScriptLoader func(skill config.SkillDef) (*timeline.Document, error)

// BattleOptions 战斗的可选依赖
type BattleOptions struct {
	// Rand 逃跑判定的随机源，为 nil 时使用当前时间作为种子
	Rand *rand.Rand

	// Scripts 技能演出加载器，为 nil 时按 SkillDef.Script 路径读取文件
	Scripts ScriptLoader

	// Timeline 编译技能演出时使用的时间轴参数
	Timeline timeline.Options
}

// Battle 战斗规则
//
// 规则结算（生命、魔法、道具、召唤）与演出分离：每个行动先在场景上原子地
// 修改数值，再播放演出。演出被取消不会回滚结算。
// 同一时刻只结算一个行动。
type Battle struct {
	mu sync.Mutex

	scene   *BattleScene
	cfg     *config.BattleConfig
	rng     *rand.Rand
	scripts ScriptLoader
	tlOpts  timeline.Options
	phase   *fsm.FSM
	items   map[string]int
}

// NewBattle 创建战斗并把配置中的单位放入场景
//
// 参数：
//   - scene: 战斗场景
//   - cfg: 战斗配置
//   - opts: 可选依赖
//
// 返回：
//   - *Battle: 战斗实例
//   - error: 单位 ID 冲突时返回错误
func NewBattle(scene *BattleScene, cfg *config.BattleConfig, opts BattleOptions) (*Battle, error) {
	if cfg == nil {
		cfg = &config.BattleConfig{MaxSummons: config.DefaultMaxSummons}
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Scripts == nil {
		opts.Scripts = FileScripts
	}
	if opts.Timeline.FPS == 0 {
		opts.Timeline = timeline.OptionsFromConfig(nil)
	}

	b := &Battle{
		scene:   scene,
		cfg:     cfg,
		rng:     opts.Rand,
		scripts: opts.Scripts,
		tlOpts:  opts.Timeline,
		items:   make(map[string]int),
	}
	b.phase = fsm.NewFSM(
		PhaseCommand,
		fsm.Events{
			{Name: eventAct, Src: []string{PhaseCommand}, Dst: PhaseActing},
			{Name: eventResolve, Src: []string{PhaseActing}, Dst: PhaseCommand},
			{Name: eventWin, Src: []string{PhaseActing}, Dst: PhaseVictory},
			{Name: eventLose, Src: []string{PhaseActing}, Dst: PhaseDefeat},
			{Name: eventFlee, Src: []string{PhaseActing}, Dst: PhaseEscaped},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				if e.Dst != PhaseActing && e.Dst != PhaseCommand {
					log.Printf("[Battle] Battle ended: %s", e.Dst)
				}
			},
		},
	)

	for _, it := range cfg.Items {
		b.items[it.ID] = it.Count
	}
	for _, tpl := range cfg.Units {
		if err := scene.AddUnit(tpl, false); err != nil {
			return nil, fmt.Errorf("failed to add unit %s: %w", tpl.ID, err)
		}
	}
	return b, nil
}

// Phase 当前阶段
func (b *Battle) Phase() string {
	return b.phase.Current()
}

// IsOver 战斗是否已经结束
func (b *Battle) IsOver() bool {
	switch b.phase.Current() {
	case PhaseVictory, PhaseDefeat, PhaseEscaped:
		return true
	}
	return false
}

// ItemCount 道具剩余数量
func (b *Battle) ItemCount(itemID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.items[itemID]
}

// SummonCount 指定阵营存活的召唤物数量
func (b *Battle) SummonCount(side string) int {
	n := 0
	for _, u := range b.scene.Units() {
		if u.Summoned && u.Side == side && u.Alive() {
			n++
		}
	}
	return n
}

// begin 进入结算阶段
//
// 阶段切换不受行动的 ctx 影响：演出被取消时战斗仍然要回到指令阶段
func (b *Battle) begin() error {
	if b.IsOver() {
		return ErrBattleOver
	}
	if err := b.phase.Event(context.Background(), eventAct); err != nil {
		return fmt.Errorf("failed to start action in phase %s: %w", b.phase.Current(), err)
	}
	return nil
}

// finish 根据双方存活情况决定下一阶段
func (b *Battle) finish() {
	playersAlive, enemiesAlive := false, false
	for _, u := range b.scene.Units() {
		if !u.Alive() {
			continue
		}
		if u.Side == config.SideEnemy {
			enemiesAlive = true
		} else {
			playersAlive = true
		}
	}

	event := eventResolve
	switch {
	case !enemiesAlive:
		event = eventWin
	case !playersAlive:
		event = eventLose
	}
	if err := b.phase.Event(context.Background(), event); err != nil {
		log.Printf("[Battle] Warning: failed to leave acting phase: %v", err)
	}
}

// actor 检查行动者存活，并清除其防御状态
func (b *Battle) actor(unitID string) (UnitState, error) {
	u, ok := b.scene.Unit(unitID)
	if !ok {
		return UnitState{}, fmt.Errorf("actor %q: %w", unitID, ErrUnknownUnit)
	}
	if !u.Alive() {
		return UnitState{}, fmt.Errorf("actor %q: %w", unitID, ErrUnitDown)
	}
	if u.Defending {
		b.modifyUnit(unitID, func(_ *components.HealthComponent, st *components.StatsComponent) {
			st.Defending = false
		})
		u.Defending = false
	}
	return u, nil
}

func (b *Battle) target(unitID string) (UnitState, error) {
	u, ok := b.scene.Unit(unitID)
	if !ok {
		return UnitState{}, fmt.Errorf("target %q: %w", unitID, ErrUnknownUnit)
	}
	return u, nil
}

// Damage 伤害公式：攻击 × 倍率 − 防御/2，至少为 1；防御状态减半
func Damage(attack, defense, power int, defending bool) int {
	dmg := attack*power/100 - defense/2
	if dmg < 1 {
		dmg = 1
	}
	if defending {
		dmg /= 2
		if dmg < 1 {
			dmg = 1
		}
	}
	return dmg
}

// applyHP 修改生命值，返回实际变化量
func (b *Battle) applyHP(unitID string, delta int) int {
	applied := 0
	b.modifyUnit(unitID, func(hp *components.HealthComponent, _ *components.StatsComponent) {
		applied = hp.Apply(delta)
	})
	return applied
}

// modifyUnit 修改单位属性，单位已离场时记录警告并返回 false
func (b *Battle) modifyUnit(unitID string, fn func(hp *components.HealthComponent, st *components.StatsComponent)) bool {
	if err := b.scene.ModifyUnit(unitID, fn); err != nil {
		log.Printf("[Battle] Warning: %v", err)
		return false
	}
	return true
}

// Attack 普通攻击
//
// 返回：
//   - int: 造成的伤害
//   - error: 单位不存在、行动者倒下或战斗已结束时返回错误；演出被取消时返回 ctx 的错误
func (b *Battle) Attack(ctx context.Context, actorID, targetID string) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	actor, err := b.actor(actorID)
	if err != nil {
		return 0, err
	}
	tgt, err := b.target(targetID)
	if err != nil {
		return 0, err
	}
	if !tgt.Alive() {
		return 0, fmt.Errorf("target %q: %w", targetID, ErrUnitDown)
	}
	if err := b.begin(); err != nil {
		return 0, err
	}
	defer b.finish()

	dmg := Damage(actor.Attack, tgt.Defense, 100, tgt.Defending)
	b.applyHP(targetID, -dmg)

	exec := steps.NewExecutor(b.scene.Deps()).WithBindings(steps.Bindings{"self": actorID, "target": targetID})
	return dmg, exec.ExecuteSteps(ctx, attackScript(actor, dmg))
}

// attackScript 普通攻击的演出：冲到目标身前、斩击、显示伤害、返回站位
func attackScript(actor UnitState, dmg int) []steps.Record {
	approach := "target.x - 60"
	if actor.Side == config.SideEnemy {
		approach = "target.x + 60"
	}
	return []steps.Record{
		{ID: "attack-approach", Type: steps.KindMove, Params: map[string]any{
			"unitId": "self", "targetX": approach, "targetY": "target.y", "duration": 200, "ease": "outQuad",
		}},
		{ID: "attack-slash", Type: steps.KindEffect, Params: map[string]any{"effectId": "slash", "targetId": "target"}},
		{ID: "attack-hit", Type: steps.KindDamage, Params: map[string]any{"targetId": "target", "value": dmg}},
		{ID: "attack-return", Type: steps.KindMove, Params: map[string]any{
			"unitId": "self", "targetX": actor.X, "targetY": actor.Y, "duration": 200, "ease": "inQuad",
		}},
	}
}

// UseSkill 使用技能
//
// 技能的演出时间轴中没有 value 参数的 damage 步骤会显示本次结算的数值。
//
// 返回：
//   - int: 伤害或治疗量
//   - error: 技能未知、MP 不足时返回 ErrUnknownSkill / ErrNotEnoughMP，且不产生任何修改
func (b *Battle) UseSkill(ctx context.Context, actorID, skillID, targetID string) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	skill, ok := b.cfg.Skill(skillID)
	if !ok {
		return 0, fmt.Errorf("skill %q: %w", skillID, ErrUnknownSkill)
	}
	actor, err := b.actor(actorID)
	if err != nil {
		return 0, err
	}
	tgt, err := b.target(targetID)
	if err != nil {
		return 0, err
	}
	if actor.MP < skill.MPCost {
		return 0, fmt.Errorf("%s needs %d MP, %s has %d: %w", skill.ID, skill.MPCost, actorID, actor.MP, ErrNotEnoughMP)
	}
	if !skill.Heal && !tgt.Alive() {
		return 0, fmt.Errorf("target %q: %w", targetID, ErrUnitDown)
	}

	doc, err := b.scripts(skill)
	if err != nil {
		log.Printf("[Battle] Warning: failed to load script for skill %s: %v", skill.ID, err)
		doc = nil
	}

	if err := b.begin(); err != nil {
		return 0, err
	}
	defer b.finish()

	// 行动者在加载演出期间离场时不再结算
	if err := b.scene.ModifyUnit(actorID, func(_ *components.HealthComponent, st *components.StatsComponent) {
		st.MP -= skill.MPCost
	}); err != nil {
		return 0, fmt.Errorf("failed to charge MP for %s: %w", skill.ID, err)
	}

	amount := 0
	kind := "normal"
	if skill.Heal {
		amount = b.applyHP(targetID, actor.Attack*skill.Power/100)
		kind = "heal"
	} else {
		amount = Damage(actor.Attack, tgt.Defense, skill.Power, tgt.Defending)
		b.applyHP(targetID, -amount)
	}

	exec := steps.NewExecutor(b.scene.Deps()).WithBindings(steps.Bindings{"self": actorID, "target": targetID})
	if doc == nil {
		return amount, exec.ExecuteStep(ctx, steps.Record{
			ID: skill.ID + "-result", Type: steps.KindDamage,
			Params: map[string]any{"targetId": "target", "value": amount, "type": kind},
		})
	}

	tl, errs := timeline.LoadDocument(*doc, b.tlOpts)
	for _, e := range errs {
		log.Printf("[Battle] Warning: skill %s script: %v", skill.ID, e)
	}
	cues := tl.Compile()
	fillDamageValues(cues, amount, kind)
	return amount, exec.ExecuteCues(ctx, cues)
}

// fillDamageValues 为没有指定数值的伤害步骤填入结算结果
func fillDamageValues(cues []steps.Cue, amount int, kind string) {
	for i := range cues {
		rec := &cues[i].Step
		if rec.Type != steps.KindDamage {
			continue
		}
		if rec.Params == nil {
			rec.Params = make(map[string]any)
		}
		if _, has := rec.Params["value"]; has {
			continue
		}
		rec.Params["value"] = amount
		if _, hasType := rec.Params["type"]; !hasType {
			rec.Params["type"] = kind
		}
	}
}

// UseItem 使用道具，数量不足时返回 ErrOutOfItems
func (b *Battle) UseItem(actorID, itemID, targetID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	item, ok := b.cfg.Item(itemID)
	if !ok {
		return fmt.Errorf("item %q: %w", itemID, ErrUnknownItem)
	}
	if b.items[itemID] <= 0 {
		return fmt.Errorf("item %q: %w", itemID, ErrOutOfItems)
	}
	if _, err := b.actor(actorID); err != nil {
		return err
	}
	if _, err := b.target(targetID); err != nil {
		return err
	}
	if err := b.begin(); err != nil {
		return err
	}
	defer b.finish()

	b.items[itemID]--
	healed, restored := 0, 0
	b.modifyUnit(targetID, func(hp *components.HealthComponent, st *components.StatsComponent) {
		if item.HealHP > 0 {
			healed = hp.Apply(item.HealHP)
		}
		if item.RestoreMP > 0 {
			before := st.MP
			st.MP += item.RestoreMP
			if st.MP > st.MaxMP {
				st.MP = st.MaxMP
			}
			restored = st.MP - before
		}
	})

	if healed > 0 {
		b.scene.ShowDamageNumber(targetID, float64(healed), "heal")
	}
	if restored > 0 {
		b.scene.ShowDamageNumber(targetID, float64(restored), "mp")
	}
	return nil
}

// Defend 进入防御状态，直到该单位下一次行动
func (b *Battle) Defend(actorID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	u, err := b.actor(actorID)
	if err != nil {
		return err
	}
	if err := b.begin(); err != nil {
		return err
	}
	defer b.finish()

	b.modifyUnit(actorID, func(_ *components.HealthComponent, st *components.StatsComponent) {
		st.Defending = true
	})
	b.scene.ShowFloatingText(u.X, u.Y-DamageTextOffset, "Defend", "#9ad0ff")
	return nil
}

// Escape 尝试逃跑，成功率为 EscapeChance
//
// 返回：
//   - bool: 是否成功；成功后战斗结束
func (b *Battle) Escape() (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.begin(); err != nil {
		return false, err
	}
	if b.rng.Float64() < b.cfg.EscapeChance {
		if err := b.phase.Event(context.Background(), eventFlee); err != nil {
			return false, fmt.Errorf("failed to flee: %w", err)
		}
		return true, nil
	}
	b.finish()
	return false, nil
}

// Summon 召唤单位加入模板所属阵营
//
// 阵营存活的召唤物已达 MaxSummons 时返回 ErrPartyFull，不做任何修改；
// 否则阵营恰好增加一个单位。
//
// 返回：
//   - string: 新单位的ID
func (b *Battle) Summon(summonID string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	tpl, ok := b.cfg.Summon(summonID)
	if !ok {
		return "", fmt.Errorf("summon %q: %w", summonID, ErrUnknownUnit)
	}
	if b.IsOver() {
		return "", ErrBattleOver
	}
	count := b.SummonCount(tpl.Side)
	if count >= b.cfg.MaxSummons {
		return "", fmt.Errorf("%s side already has %d summons: %w", tpl.Side, count, ErrPartyFull)
	}
	if err := b.begin(); err != nil {
		return "", err
	}
	defer b.finish()

	tpl.ID = summonID + "-" + uuid.NewString()[:8]
	direction := 1.0
	if tpl.Side == config.SideEnemy {
		direction = -1
	}
	tpl.X += direction * float64(count) * b.cfg.SummonSpacing
	if err := b.scene.AddUnit(tpl, true); err != nil {
		return "", err
	}
	b.scene.PlayEffectOnUnit(tpl.ID, steps.EffectRequest{EffectID: "summon", Scale: 1, Alpha: 1})
	log.Printf("[Battle] Summoned %s (%d/%d)", tpl.ID, count+1, b.cfg.MaxSummons)
	return tpl.ID, nil
}

// EnemyTurn 每个存活的敌人攻击第一个存活的己方单位
func (b *Battle) EnemyTurn(ctx context.Context) error {
	for _, u := range b.scene.Units() {
		if u.Side != config.SideEnemy || !u.Alive() {
			continue
		}
		target := ""
		for _, p := range b.scene.Units() {
			if p.Side == config.SidePlayer && p.Alive() {
				target = p.ID
				break
			}
		}
		if target == "" || b.IsOver() {
			return nil
		}
		if _, err := b.Attack(ctx, u.ID, target); err != nil {
			return err
		}
	}
	return nil
}

// FileScripts 按 SkillDef.Script 路径读取演出文档，路径为空表示没有演出
func FileScripts(skill config.SkillDef) (*timeline.Document, error) {
	if skill.Script == "" {
		return nil, nil
	}
	return LoadSkillDocument(skill.Script)
}

// LoadSkillDocument 读取技能文档，磁盘上不存在时使用嵌入的默认数据
func LoadSkillDocument(path string) (*timeline.Document, error) {
	data, err := config.ReadDataFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read skill document %s: %w", path, err)
	}
	doc, err := timeline.DecodeDocument(data, timeline.FormatForPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse skill document %s: %w", path, err)
	}
	return doc, nil
}
