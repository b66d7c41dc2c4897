package store

import (
	"context"
	"encoding/json"
	"fmt"

	"homemanager-allocation/internal/domain"
)

// SnapshotCache 离线快照缓存：按键保存服务端返回（或由其推导）的
// 最后一次 JSON 快照。写入为 last-writer-wins，无版本号。
// 快照不设过期时间：离线场景下宁可展示旧数据也不展示空页面。
type SnapshotCache struct {
	kv KV
}

func NewSnapshotCache(kv KV) *SnapshotCache {
	return &SnapshotCache{kv: kv}
}

func (c *SnapshotCache) getJSON(ctx context.Context, key string, out any) error {
	raw, err := c.kv.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("decode cached snapshot %s: %w", key, err)
	}
	return nil
}

func (c *SnapshotCache) putJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", key, err)
	}
	return c.kv.Set(ctx, key, string(raw), 0)
}

// GetTenant 读取租客快照，未缓存返回 ErrMiss
func (c *SnapshotCache) GetTenant(ctx context.Context, tenantID string) (*domain.Tenant, error) {
	var t domain.Tenant
	if err := c.getJSON(ctx, TenantKey(tenantID), &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *SnapshotCache) PutTenant(ctx context.Context, t *domain.Tenant) error {
	return c.putJSON(ctx, TenantKey(t.ID), t)
}

// GetUnit 读取单元详情快照，未缓存返回 ErrMiss
func (c *SnapshotCache) GetUnit(ctx context.Context, unitID string) (*domain.Unit, error) {
	var u domain.Unit
	if err := c.getJSON(ctx, UnitDetailKey(unitID), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *SnapshotCache) PutUnit(ctx context.Context, u *domain.Unit) error {
	return c.putJSON(ctx, UnitDetailKey(u.ID), u)
}

// GetAvailableUnits 读取可出租单元列表快照
func (c *SnapshotCache) GetAvailableUnits(ctx context.Context, propertyID string) ([]domain.Unit, error) {
	var units []domain.Unit
	if err := c.getJSON(ctx, AvailableUnitsKey(propertyID), &units); err != nil {
		return nil, err
	}
	return units, nil
}

func (c *SnapshotCache) PutAvailableUnits(ctx context.Context, propertyID string, units []domain.Unit) error {
	return c.putJSON(ctx, AvailableUnitsKey(propertyID), units)
}

// GetTenantList 读取全量租客列表快照
func (c *SnapshotCache) GetTenantList(ctx context.Context) ([]domain.Tenant, error) {
	var tenants []domain.Tenant
	if err := c.getJSON(ctx, TenantListKey, &tenants); err != nil {
		return nil, err
	}
	return tenants, nil
}

func (c *SnapshotCache) PutTenantList(ctx context.Context, tenants []domain.Tenant) error {
	return c.putJSON(ctx, TenantListKey, tenants)
}
