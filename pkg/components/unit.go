package components

// UnitComponent 战斗单位的身份信息
type UnitComponent struct {
	ID       string // 单位ID（脚本与步骤中引用的名字）
	Name     string // 显示名称
	Side     string // 阵营：player / enemy
	Summoned bool   // 是否为召唤物
}

// StatsComponent 战斗属性
type StatsComponent struct {
	MP        int
	MaxMP     int
	Attack    int
	Defense   int
	Defending bool // 防御状态，下一次行动前受到的伤害减半
}

// PositionComponent 世界坐标
//
// 动画直接修改 X/Y 字段，组件必须以指针形式存放
type PositionComponent struct {
	X, Y float64
}

// HomePositionComponent 单位的站位，ResetUnitPosition 会回到这里
type HomePositionComponent struct {
	X, Y float64
}
