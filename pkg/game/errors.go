package game

import "errors"

// 战斗规则错误，使用 errors.Is 判断
var (
	ErrPartyFull     = errors.New("party is full")
	ErrUnknownUnit   = errors.New("unknown unit")
	ErrDuplicateUnit = errors.New("duplicate unit id")
	ErrUnitDown      = errors.New("unit is down")
	ErrNotEnoughMP   = errors.New("not enough MP")
	ErrUnknownSkill  = errors.New("unknown skill")
	ErrUnknownItem   = errors.New("unknown item")
	ErrOutOfItems    = errors.New("no items left")
	ErrBattleOver    = errors.New("battle is over")
)
