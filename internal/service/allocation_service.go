package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"homemanager-allocation/internal/domain"
	"homemanager-allocation/internal/store"

	"go.uber.org/zap"
)

// PropertyAPI 编排器依赖的后端契约（*PropertyClient 为线上实现，测试用记录桩）
type PropertyAPI interface {
	AllocateUnit(ctx context.Context, unitID, method string, payload AllocationPayload) (json.RawMessage, error)
	DeallocateUnit(ctx context.Context, tenantID, unitID string) (json.RawMessage, error)
	TransferTenant(ctx context.Context, tenantID, fromUnitID, toUnitID string, payload TransferPayload) (json.RawMessage, error)
	UpdateTenant(ctx context.Context, tenantID string, fields map[string]any) (json.RawMessage, error)
	FetchUnit(ctx context.Context, unitID string) (*domain.Unit, error)
	FetchAvailableUnits(ctx context.Context, propertyID string, filters UnitFilters) ([]domain.Unit, error)
}

// AllocationService 租客-单元分配编排器
//
// 职责：对一次 Transition 恰好执行一次后端调用，成功后把四类缓存条目
// （租客、单元详情、可租单元列表、全量租客列表）更新到与该迁移一致的
// 状态；失败时不动缓存；离线时入队后立即返回。
//
// 并发模型：单提交串行执行，同一租客同时至多一个在途提交由 UI 的
// loading 状态保证，这里不加锁。
type AllocationService struct {
	api    PropertyAPI
	cache  *store.SnapshotCache
	queue  *OfflineQueue
	net    Network
	logger *zap.Logger
}

func NewAllocationService(api PropertyAPI, cache *store.SnapshotCache, queue *OfflineQueue, net Network, logger *zap.Logger) *AllocationService {
	return &AllocationService{api: api, cache: cache, queue: queue, net: net, logger: logger}
}

// Allocate 分配（isReallocation=false，POST）或同单元重分配
// （isReallocation=true，PATCH）。
//
// 重分配成功后缓存中的 is_occupied 被写为 false —— 这是后端约定：
// 同单元 PATCH 被视作「更新租约条款」，服务端会自行复位占用标记，
// 权威值由随后的强制刷新（RefreshUnit）取回。首次分配写 true。
func (s *AllocationService) Allocate(ctx context.Context, tenantID, unitID, propertyID string, lease domain.LeaseDetails, isReallocation bool) Result {
	if s.net.Offline() {
		if err := s.queue.Enqueue(ctx, ActionAllocate, allocateActionArgs{
			TenantID:       tenantID,
			UnitID:         unitID,
			PropertyID:     propertyID,
			LeaseDetails:   lease,
			IsReallocation: isReallocation,
		}); err != nil {
			return fail(err)
		}
		return Result{OfflineQueued: true, Err: errors.New("cannot allocate tenant to unit while offline")}
	}

	method := http.MethodPost
	if isReallocation {
		method = http.MethodPatch
	}
	payload := AllocationPayload{
		TenantID:     tenantID,
		UnitID:       unitID,
		PropertyID:   propertyID,
		LeaseDetails: lease,
	}

	data, err := s.api.AllocateUnit(ctx, unitID, method, payload)
	if err != nil {
		return fail(err)
	}

	if err := s.patchAfterAllocate(ctx, tenantID, unitID, propertyID, isReallocation, data); err != nil {
		return fail(fmt.Errorf("allocation succeeded but cache update failed: %w", err))
	}
	return ok(data)
}

// Deallocate 解除租客与当前单元的关联
func (s *AllocationService) Deallocate(ctx context.Context, tenantID, unitID string) Result {
	if s.net.Offline() {
		if err := s.queue.Enqueue(ctx, ActionDeallocate, deallocateActionArgs{
			TenantID: tenantID,
			UnitID:   unitID,
		}); err != nil {
			return fail(err)
		}
		return Result{OfflineQueued: true, Err: errors.New("cannot deallocate tenant from unit while offline")}
	}

	data, err := s.api.DeallocateUnit(ctx, tenantID, unitID)
	if err != nil {
		return fail(err)
	}

	if err := s.patchAfterDeallocate(ctx, tenantID, unitID); err != nil {
		return fail(fmt.Errorf("deallocation succeeded but cache update failed: %w", err))
	}
	return ok(data)
}

// Transfer 跨单元转移（仅当原单元与目标单元都存在且不同时使用）
func (s *AllocationService) Transfer(ctx context.Context, tenantID, fromUnitID, toUnitID string, lease domain.LeaseDetails) Result {
	if s.net.Offline() {
		if err := s.queue.Enqueue(ctx, ActionTransfer, transferActionArgs{
			TenantID:        tenantID,
			FromUnitID:      fromUnitID,
			ToUnitID:        toUnitID,
			TransferDetails: lease,
		}); err != nil {
			return fail(err)
		}
		return Result{OfflineQueued: true, Err: errors.New("cannot transfer tenant while offline")}
	}

	payload := TransferPayload{
		TenantID:     tenantID,
		FromUnitID:   fromUnitID,
		ToUnitID:     toUnitID,
		LeaseDetails: lease,
	}
	data, err := s.api.TransferTenant(ctx, tenantID, fromUnitID, toUnitID, payload)
	if err != nil {
		return fail(err)
	}

	if err := s.patchAfterTransfer(ctx, tenantID, fromUnitID, toUnitID, data); err != nil {
		return fail(fmt.Errorf("transfer succeeded but cache update failed: %w", err))
	}
	return ok(data)
}

// UpdateTenant 部分更新租客基础字段（非分配族调用，提交流水线第一步）
// 离线时：入队 + 乐观写缓存，返回 FromCache
func (s *AllocationService) UpdateTenant(ctx context.Context, tenantID string, fields map[string]any) Result {
	if s.net.Offline() {
		if err := s.queue.Enqueue(ctx, ActionUpdateTenant, fields); err != nil {
			return fail(err)
		}
		if err := s.patchTenantFields(ctx, tenantID, fields); err != nil {
			return fail(err)
		}
		return Result{Success: true, FromCache: true, OfflineQueued: true}
	}

	data, err := s.api.UpdateTenant(ctx, tenantID, fields)
	if err != nil {
		return fail(err)
	}

	if err := s.patchTenantSnapshot(ctx, tenantID, data, nil); err != nil {
		return fail(fmt.Errorf("tenant update succeeded but cache update failed: %w", err))
	}
	return ok(data)
}

// RefreshUnit 强制从服务端拉取单元详情并覆盖缓存
// 同单元重分配之后必须调用：PATCH 后的 is_occupied 客户端推不出来，
// 以服务端返回为准
func (s *AllocationService) RefreshUnit(ctx context.Context, unitID string) (*domain.Unit, error) {
	unit, err := s.api.FetchUnit(ctx, unitID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.PutUnit(ctx, unit); err != nil {
		return nil, err
	}
	s.logger.Info("Unit detail refreshed",
		zap.String("unit_id", unitID),
		zap.Bool("is_occupied", unit.IsOccupied),
	)
	return unit, nil
}

// AvailableUnits 可出租单元列表：离线时回退缓存，在线时拉取并缓存
// 返回值第二项表示结果是否来自缓存
func (s *AllocationService) AvailableUnits(ctx context.Context, propertyID string, filters UnitFilters) ([]domain.Unit, bool, error) {
	if s.net.Offline() {
		units, err := s.cache.GetAvailableUnits(ctx, propertyID)
		if err != nil {
			if errors.Is(err, store.ErrMiss) {
				return nil, false, errors.New("cannot fetch available units while offline")
			}
			return nil, false, err
		}
		return units, true, nil
	}

	units, err := s.api.FetchAvailableUnits(ctx, propertyID, filters)
	if err != nil {
		return nil, false, err
	}
	if err := s.cache.PutAvailableUnits(ctx, propertyID, units); err != nil {
		return nil, false, err
	}
	return units, false, nil
}

// ---- 缓存一致性修补 ----
//
// 所有修补遵循同一规则：对应条目未缓存（ErrMiss）时跳过，其余错误上抛。
// 同一进程内的后续读取看不到中间状态：提交是串行的，修补在返回前完成。

func (s *AllocationService) patchAfterAllocate(ctx context.Context, tenantID, unitID, propertyID string, isReallocation bool, data json.RawMessage) error {
	occupied := !isReallocation

	// 租客快照：写入新的 unit/property 关联，再把响应体并入
	setUnit := func(t *domain.Tenant) {
		t.UnitID = &unitID
		t.PropertyID = &propertyID
		mergeSnapshot(data, t)
	}
	if err := s.patchTenantSnapshot(ctx, tenantID, nil, setUnit); err != nil {
		return err
	}

	// 单元详情：占用标记按 POST/PATCH 的后端约定写入
	if err := s.patchUnitOccupancy(ctx, unitID, occupied); err != nil {
		return err
	}

	// 可租单元列表：同步该单元的占用标记
	units, err := s.cache.GetAvailableUnits(ctx, propertyID)
	if err == nil {
		for i := range units {
			if units[i].ID == unitID {
				units[i].IsOccupied = occupied
			}
		}
		if err := s.cache.PutAvailableUnits(ctx, propertyID, units); err != nil {
			return err
		}
	} else if !errors.Is(err, store.ErrMiss) {
		return err
	}

	return nil
}

func (s *AllocationService) patchAfterDeallocate(ctx context.Context, tenantID, unitID string) error {
	clearUnit := func(t *domain.Tenant) {
		t.UnitID = nil
		t.PropertyID = nil
		t.UnitNumber = nil
		t.PropertyName = nil
	}
	if err := s.patchTenantSnapshot(ctx, tenantID, nil, clearUnit); err != nil {
		return err
	}
	return s.patchUnitOccupancy(ctx, unitID, false)
}

func (s *AllocationService) patchAfterTransfer(ctx context.Context, tenantID, fromUnitID, toUnitID string, data json.RawMessage) error {
	// 目标单元的 property_id 若有缓存则一并带到租客快照上
	var newPropertyID string
	if u, err := s.cache.GetUnit(ctx, toUnitID); err == nil {
		newPropertyID = u.PropertyID
	} else if !errors.Is(err, store.ErrMiss) {
		return err
	}

	moveUnit := func(t *domain.Tenant) {
		t.UnitID = &toUnitID
		if newPropertyID != "" {
			p := newPropertyID
			t.PropertyID = &p
		}
		mergeSnapshot(data, t)
	}
	if err := s.patchTenantSnapshot(ctx, tenantID, nil, moveUnit); err != nil {
		return err
	}

	if err := s.patchUnitOccupancy(ctx, fromUnitID, false); err != nil {
		return err
	}
	return s.patchUnitOccupancy(ctx, toUnitID, true)
}

// patchTenantSnapshot 同步更新租客专属快照与全量租客列表里的同一条目。
// apply 非空时先应用结构化修改；data 非空时（apply 为空的场合）直接并入响应体。
func (s *AllocationService) patchTenantSnapshot(ctx context.Context, tenantID string, data json.RawMessage, apply func(*domain.Tenant)) error {
	mutate := apply
	if mutate == nil {
		mutate = func(t *domain.Tenant) { mergeSnapshot(data, t) }
	}

	t, err := s.cache.GetTenant(ctx, tenantID)
	if err == nil {
		mutate(t)
		t.ID = tenantID
		if err := s.cache.PutTenant(ctx, t); err != nil {
			return err
		}
	} else if !errors.Is(err, store.ErrMiss) {
		return err
	}

	list, err := s.cache.GetTenantList(ctx)
	if err == nil {
		for i := range list {
			if list[i].ID == tenantID {
				mutate(&list[i])
				list[i].ID = tenantID
			}
		}
		if err := s.cache.PutTenantList(ctx, list); err != nil {
			return err
		}
	} else if !errors.Is(err, store.ErrMiss) {
		return err
	}

	return nil
}

func (s *AllocationService) patchUnitOccupancy(ctx context.Context, unitID string, occupied bool) error {
	u, err := s.cache.GetUnit(ctx, unitID)
	if err != nil {
		if errors.Is(err, store.ErrMiss) {
			return nil
		}
		return err
	}
	u.IsOccupied = occupied
	if err := s.cache.PutUnit(ctx, u); err != nil {
		return err
	}
	s.logger.Debug("Patched cached unit occupancy",
		zap.String("unit_id", unitID),
		zap.Bool("is_occupied", occupied),
	)
	return nil
}

// patchTenantFields 离线乐观写：把变更字段并入缓存的租客快照
func (s *AllocationService) patchTenantFields(ctx context.Context, tenantID string, fields map[string]any) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	return s.patchTenantSnapshot(ctx, tenantID, raw, nil)
}

// mergeSnapshot 把服务端响应体并入已缓存的快照
// 响应中出现的字段覆盖缓存值，未出现的字段保持不变（等价于对象展开合并）；
// 响应不是租客形态的对象时快照保持原样
func mergeSnapshot(data json.RawMessage, dst *domain.Tenant) {
	if len(data) == 0 {
		return
	}
	_ = json.Unmarshal(data, dst)
}
