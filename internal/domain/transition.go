package domain

// UnitSelection 编辑会话中的单元选择（三态值对象）
//   - Unchanged: 用户没有触碰过单元选择器
//   - Cleared:   清除了单元（解除分配）
//   - SetTo:     选择了某个单元（可能与当前单元相同）
//
// 粘性约定：一旦离开 Unchanged，本次编辑会话内不再回到 Unchanged。
// 即使用户最终选回原单元，提交时也必须走重分配路径（PATCH），
// 这样租约字段的变更才会被推送、is_occupied 才会按后端约定复位。
type UnitSelection struct {
	changed bool
	unitID  string
}

// UnitUnchanged 未触碰单元选择器
func UnitUnchanged() UnitSelection { return UnitSelection{} }

// UnitCleared 清除单元选择
func UnitCleared() UnitSelection { return UnitSelection{changed: true} }

// UnitSetTo 选中指定单元
func UnitSetTo(unitID string) UnitSelection {
	return UnitSelection{changed: true, unitID: unitID}
}

// Changed 选择器是否被触碰过（粘性标志）
func (s UnitSelection) Changed() bool { return s.changed }

// UnitID 选中的单元 ID（Cleared/Unchanged 时为空串）
func (s UnitSelection) UnitID() string { return s.unitID }

// IsCleared 是否为清除选择
func (s UnitSelection) IsCleared() bool { return s.changed && s.unitID == "" }

// TransitionKind 分配操作类型
type TransitionKind int

const (
	// TransitionNone 无需任何分配族调用
	TransitionNone TransitionKind = iota
	// TransitionNewAllocation 首次分配（POST）
	TransitionNewAllocation
	// TransitionReallocation 同单元重分配（PATCH，通常用于更新租约条款）
	TransitionReallocation
	// TransitionTransfer 跨单元转移（专用 transfer 端点）
	TransitionTransfer
	// TransitionDeallocation 解除分配
	TransitionDeallocation
)

func (k TransitionKind) String() string {
	switch k {
	case TransitionNewAllocation:
		return "new_allocation"
	case TransitionReallocation:
		return "reallocation"
	case TransitionTransfer:
		return "transfer"
	case TransitionDeallocation:
		return "deallocation"
	default:
		return "none"
	}
}

// Transition 一次提交对应的分配状态迁移（由 Classify 计算，不持久化）
// 每次提交恰好适用一种迁移
type Transition struct {
	Kind       TransitionKind
	FromUnitID string // Transfer / Deallocation 的原单元
	ToUnitID   string // NewAllocation / Reallocation / Transfer 的目标单元
}
