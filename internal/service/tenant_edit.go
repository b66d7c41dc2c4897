package service

import (
	"context"

	"homemanager-allocation/internal/domain"
)

// SubmitStep 提交流水线中的步骤标识
type SubmitStep int

const (
	// StepNone 没有失败的步骤
	StepNone SubmitStep = iota
	// StepTenantUpdate 第一步：租客基础字段更新
	StepTenantUpdate
	// StepAllocation 第二步：分配族调用
	StepAllocation
)

// SubmitOutcome 两步提交的判别结果
// 调用方据此区分「第一步失败」「第一步成功、第二步失败」「全部成功」，
// 不必解析错误文案。第一步失败时分配调用一定没有发出（见 Submit）。
type SubmitOutcome struct {
	// Transition 本次提交判定出的分配迁移（第一步失败时为零值）
	Transition domain.Transition
	// TenantUpdate 第一步结果；nil 表示没有基础字段变更，跳过了该调用
	TenantUpdate *Result
	// Allocation 第二步结果；nil 表示未走到或无需分配调用
	Allocation *Result
	// FailedStep 首个失败的步骤（StepNone 表示全部成功）
	FailedStep SubmitStep
}

// Success 整个提交是否成功
func (o SubmitOutcome) Success() bool { return o.FailedStep == StepNone }

// TenantEditSession 编辑租客表单的待提交状态
//
// 跟踪表单字段与原租客记录的差异（提交时只发送变化的字段），以及
// 粘性的单元选择状态。一个会话对应一次编辑界面的生命周期。
type TenantEditSession struct {
	original  *domain.Tenant
	selection domain.UnitSelection
	// propertyID 选中单元所属物业（分配请求需要）
	propertyID string

	name            string
	email           string
	phoneNumber     string
	status          string
	notes           string
	moveInDate      string
	leaseStartDate  string
	leaseEndDate    string
	securityDeposit *float64
}

// NewTenantEditSession 以租客当前记录为基线开启编辑会话
func NewTenantEditSession(t *domain.Tenant) *TenantEditSession {
	s := &TenantEditSession{
		original:       t,
		selection:      domain.UnitUnchanged(),
		name:           t.Name,
		email:          t.Email,
		phoneNumber:    t.PhoneNumber,
		status:         t.Status,
		notes:          t.Notes,
		moveInDate:     t.MoveInDate,
		leaseStartDate: t.LeaseStartDate,
		leaseEndDate:   t.LeaseEndDate,
	}
	if t.PropertyID != nil {
		s.propertyID = *t.PropertyID
	}
	if t.SecurityDeposit != nil {
		d := *t.SecurityDeposit
		s.securityDeposit = &d
	}
	return s
}

// SelectUnit 选中一个单元（可能与当前单元相同）
// 无条件置粘性标志：即使重新选回原单元，提交时也要走重分配路径。
// 押金为空时取单元的挂牌押金作为默认值。
func (s *TenantEditSession) SelectUnit(u domain.Unit) {
	s.selection = domain.UnitSetTo(u.ID)
	s.propertyID = u.PropertyID

	if s.securityDeposit == nil && u.SecurityDeposit > 0 {
		d := u.SecurityDeposit
		s.securityDeposit = &d
	}
}

// ClearUnit 清除单元选择（解除分配）
// 租客本就没有单元时不触发分配逻辑，除非选择器已被触碰过（粘性）。
func (s *TenantEditSession) ClearUnit() {
	if s.original.HasUnit() || s.selection.Changed() {
		s.selection = domain.UnitCleared()
	}
}

// Selection 当前的单元选择状态
func (s *TenantEditSession) Selection() domain.UnitSelection { return s.selection }

func (s *TenantEditSession) SetName(v string)        { s.name = v }
func (s *TenantEditSession) SetEmail(v string)       { s.email = v }
func (s *TenantEditSession) SetPhoneNumber(v string) { s.phoneNumber = v }
func (s *TenantEditSession) SetNotes(v string)       { s.notes = v }
func (s *TenantEditSession) SetMoveInDate(v string)  { s.moveInDate = v }

// SetActive 切换在住状态
func (s *TenantEditSession) SetActive(active bool) {
	if active {
		s.status = "active"
	} else {
		s.status = "inactive"
	}
}

// SetLeaseDates 设置租约起止日期（YYYY-MM-DD）
func (s *TenantEditSession) SetLeaseDates(start, end string) {
	s.leaseStartDate = start
	s.leaseEndDate = end
}

func (s *TenantEditSession) SetSecurityDeposit(v float64) {
	s.securityDeposit = &v
}

// changedFields 非分配类字段相对原记录的差异（空 map 表示无需第一步调用）
func (s *TenantEditSession) changedFields() map[string]any {
	fields := map[string]any{}
	if s.name != s.original.Name {
		fields["name"] = s.name
	}
	if s.email != s.original.Email {
		fields["email"] = s.email
	}
	if s.phoneNumber != s.original.PhoneNumber {
		fields["phone_number"] = s.phoneNumber
	}
	if s.status != s.original.Status {
		fields["status"] = s.status
	}
	if s.moveInDate != s.original.MoveInDate {
		fields["move_in_date"] = s.moveInDate
	}
	if s.leaseStartDate != s.original.LeaseStartDate {
		fields["lease_start_date"] = s.leaseStartDate
	}
	if s.leaseEndDate != s.original.LeaseEndDate {
		fields["lease_end_date"] = s.leaseEndDate
	}
	if !floatPtrEqual(s.securityDeposit, s.original.SecurityDeposit) && s.securityDeposit != nil {
		fields["security_deposit"] = *s.securityDeposit
	}
	if s.notes != s.original.Notes {
		fields["notes"] = s.notes
	}
	return fields
}

// leaseChanges 分配请求随附的租约字段（仅含有变化的）
func (s *TenantEditSession) leaseChanges() domain.LeaseDetails {
	var d domain.LeaseDetails
	if s.leaseStartDate != s.original.LeaseStartDate {
		v := s.leaseStartDate
		d.LeaseStartDate = &v
	}
	if s.leaseEndDate != s.original.LeaseEndDate {
		v := s.leaseEndDate
		d.LeaseEndDate = &v
	}
	if s.securityDeposit != nil && !floatPtrEqual(s.securityDeposit, s.original.SecurityDeposit) {
		v := *s.securityDeposit
		d.SecurityDeposit = &v
	}
	return d
}

// Submit 两步提交流水线，严格串行：
//
//	[租客字段更新] -> [分配族调用] -> [缓存修补] -> [可选的强制单元刷新]
//
// 任一步失败即中止，后续步骤不再尝试（失败的 deallocate 之后绝不会
// 跟着 allocate）。每一步的结果单独记录在 SubmitOutcome 里。
func (s *TenantEditSession) Submit(ctx context.Context, svc *AllocationService) SubmitOutcome {
	out := SubmitOutcome{}

	// 第一步：仅当存在基础字段变更时才发 PATCH
	fields := s.changedFields()
	if len(fields) > 0 {
		fields["id"] = s.original.ID
		res := svc.UpdateTenant(ctx, s.original.ID, fields)
		out.TenantUpdate = &res
		if !res.Success {
			out.FailedStep = StepTenantUpdate
			return out
		}
	}

	// 第二步：分类并执行恰好一种分配迁移
	tr := Classify(s.original.CurrentUnitID(), s.selection)
	out.Transition = tr

	switch tr.Kind {
	case domain.TransitionNone:
		return out

	case domain.TransitionDeallocation:
		res := svc.Deallocate(ctx, s.original.ID, tr.FromUnitID)
		out.Allocation = &res
		if !res.Success {
			out.FailedStep = StepAllocation
		}

	case domain.TransitionNewAllocation:
		res := svc.Allocate(ctx, s.original.ID, tr.ToUnitID, s.propertyID, s.leaseChanges(), false)
		out.Allocation = &res
		if !res.Success {
			out.FailedStep = StepAllocation
		}

	case domain.TransitionReallocation:
		res := svc.Allocate(ctx, s.original.ID, tr.ToUnitID, s.propertyID, s.leaseChanges(), true)
		out.Allocation = &res
		if !res.Success {
			out.FailedStep = StepAllocation
			return out
		}
		// 重分配后强制刷新单元详情：PATCH 后的 is_occupied 以服务端为准。
		// 刷新失败不改变提交结果，缓存保留两阶段约定的 false。
		_, _ = svc.RefreshUnit(ctx, tr.ToUnitID)

	case domain.TransitionTransfer:
		res := svc.Transfer(ctx, s.original.ID, tr.FromUnitID, tr.ToUnitID, s.leaseChanges())
		out.Allocation = &res
		if !res.Success {
			out.FailedStep = StepAllocation
		}
	}

	return out
}

func floatPtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
