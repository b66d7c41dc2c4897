package service

import "homemanager-allocation/internal/domain"

// Classify 根据提交前的单元与本次选择判定分配操作类型。
//
// 选择器未被触碰（Unchanged）时直接返回 TransitionNone：单元相关
// 字段没有任何变化，完全跳过分配族调用，省一次服务端往返。
//
// 其余情况按四分法判定（每对输入恰好落入一种）：
//
//	prev == ""  && selected != ""        -> NewAllocation
//	prev != ""  && selected == ""        -> Deallocation
//	prev != ""  && selected == prev      -> Reallocation（同单元，PATCH）
//	prev != ""  && selected != prev      -> Transfer
//	prev == ""  && selected == ""        -> None
//
// 纯函数，无副作用，可推测性调用后丢弃结果。
func Classify(previousUnitID string, sel domain.UnitSelection) domain.Transition {
	if !sel.Changed() {
		return domain.Transition{Kind: domain.TransitionNone}
	}

	selected := sel.UnitID()
	switch {
	case selected == "" && previousUnitID == "":
		return domain.Transition{Kind: domain.TransitionNone}
	case selected == "":
		return domain.Transition{Kind: domain.TransitionDeallocation, FromUnitID: previousUnitID}
	case previousUnitID == "":
		return domain.Transition{Kind: domain.TransitionNewAllocation, ToUnitID: selected}
	case selected == previousUnitID:
		return domain.Transition{Kind: domain.TransitionReallocation, ToUnitID: selected}
	default:
		return domain.Transition{Kind: domain.TransitionTransfer, FromUnitID: previousUnitID, ToUnitID: selected}
	}
}
