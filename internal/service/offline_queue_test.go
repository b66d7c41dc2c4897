package service

import (
	"context"
	"encoding/json"
	"testing"

	"homemanager-allocation/internal/domain"
	"homemanager-allocation/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOfflineQueue_EnqueuePendingClear(t *testing.T) {
	kv := store.NewMemoryKV()
	q := NewOfflineQueue(kv, zap.NewNop())
	ctx := context.Background()

	// 空队列
	actions, err := q.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, actions)

	require.NoError(t, q.Enqueue(ctx, ActionAllocate, allocateActionArgs{TenantID: "t1", UnitID: "u1", PropertyID: "p1"}))
	require.NoError(t, q.Enqueue(ctx, ActionDeallocate, deallocateActionArgs{TenantID: "t2", UnitID: "u2"}))

	actions, err = q.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, actions, 2)

	// 保持入队顺序，每个动作带唯一 ID 与时间戳
	assert.Equal(t, ActionAllocate, actions[0].Type)
	assert.Equal(t, ActionDeallocate, actions[1].Type)
	assert.NotEmpty(t, actions[0].ID)
	assert.NotEmpty(t, actions[0].Timestamp)
	assert.NotEqual(t, actions[0].ID, actions[1].ID)

	require.NoError(t, q.Clear(ctx))
	actions, err = q.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, actions)
}

func TestOfflineQueue_WireFormat(t *testing.T) {
	// 队列键与参数键名与移动端历史格式保持一致
	kv := store.NewMemoryKV()
	q := NewOfflineQueue(kv, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, ActionTransfer, transferActionArgs{
		TenantID: "t1", FromUnitID: "u1", ToUnitID: "u2",
	}))

	raw, err := kv.Get(ctx, store.OfflineQueueKey)
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
	require.Len(t, decoded, 1)
	data := decoded[0]["data"].(map[string]any)
	assert.Equal(t, "t1", data["tenantId"])
	assert.Equal(t, "u1", data["fromUnitId"])
	assert.Equal(t, "u2", data["toUnitId"])
}

func TestReplayer_ReplaysQueuedActionsThenClears(t *testing.T) {
	fx := newAllocFixture()
	ctx := context.Background()

	// 离线期间排了三个动作
	fx.net.SetOffline(true)
	fx.svc.Allocate(ctx, "t1", "u1", "p1", domain.LeaseDetails{}, false)
	fx.svc.Deallocate(ctx, "t2", "u2")
	fx.svc.UpdateTenant(ctx, "t3", map[string]any{"id": "t3", "name": "Carol"})
	require.Empty(t, fx.api.calls)

	// 恢复在线后回放
	fx.net.SetOffline(false)
	rep := NewReplayer(fx.queue, fx.svc, fx.net, zap.NewNop())
	require.NoError(t, rep.Replay(ctx))

	require.Len(t, fx.api.calls, 3)
	assert.Equal(t, "allocate", fx.api.calls[0].Op)
	assert.Equal(t, "t1", fx.api.calls[0].TenantID)
	assert.Equal(t, "deallocate", fx.api.calls[1].Op)
	assert.Equal(t, "updateTenant", fx.api.calls[2].Op)
	assert.Equal(t, "Carol", fx.api.calls[2].Fields["name"])

	// 整轮结束后队列清空
	actions, err := fx.queue.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, actions)
}

func TestReplayer_OfflineIsNoop(t *testing.T) {
	fx := newAllocFixture()
	ctx := context.Background()

	fx.net.SetOffline(true)
	fx.svc.Allocate(ctx, "t1", "u1", "p1", domain.LeaseDetails{}, false)

	rep := NewReplayer(fx.queue, fx.svc, fx.net, zap.NewNop())
	require.NoError(t, rep.Replay(ctx))

	// 仍离线：不回放也不清队列
	assert.Empty(t, fx.api.calls)
	actions, err := fx.queue.Pending(ctx)
	require.NoError(t, err)
	assert.Len(t, actions, 1)
}

func TestReplayer_FailedActionDoesNotHaltRound(t *testing.T) {
	fx := newAllocFixture()
	ctx := context.Background()

	fx.net.SetOffline(true)
	fx.svc.Allocate(ctx, "t1", "u1", "p1", domain.LeaseDetails{}, false)
	fx.svc.Deallocate(ctx, "t2", "u2")
	fx.net.SetOffline(false)

	// 所有后端调用都失败：两个动作都应被尝试，队列仍被清空
	fx.api.err = &APIError{Kind: ErrKindServer, StatusCode: 500, Message: "request failed with status 500"}
	rep := NewReplayer(fx.queue, fx.svc, fx.net, zap.NewNop())
	require.NoError(t, rep.Replay(ctx))

	assert.Len(t, fx.api.calls, 2)
	actions, err := fx.queue.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, actions)
}

func TestReplayer_UnknownActionTypeLogged(t *testing.T) {
	fx := newAllocFixture()
	ctx := context.Background()
	require.NoError(t, fx.queue.Enqueue(ctx, "renameProperty", map[string]any{"propertyId": "p1"}))

	rep := NewReplayer(fx.queue, fx.svc, fx.net, zap.NewNop())
	require.NoError(t, rep.Replay(ctx))

	assert.Empty(t, fx.api.calls)
	actions, err := fx.queue.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, actions)
}
