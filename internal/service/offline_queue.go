package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"homemanager-allocation/internal/domain"
	"homemanager-allocation/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// 离线动作类型（与移动端队列里的历史命名保持兼容，回放时按此分发）
const (
	ActionAllocate     = "allocateTenantToUnit"
	ActionDeallocate   = "deallocateTenantFromUnit"
	ActionTransfer     = "transferTenant"
	ActionUpdateTenant = "updateTenant"
)

// OfflineAction 离线期间排队等待回放的动作
type OfflineAction struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp string          `json:"timestamp"`
}

// 队列中各动作的参数形态（与移动端入队的 JSON 键名一致）

type allocateActionArgs struct {
	TenantID       string              `json:"tenantId"`
	UnitID         string              `json:"unitId"`
	PropertyID     string              `json:"propertyId"`
	LeaseDetails   domain.LeaseDetails `json:"leaseDetails"`
	IsReallocation bool                `json:"isReallocation"`
}

type deallocateActionArgs struct {
	TenantID string `json:"tenantId"`
	UnitID   string `json:"unitId"`
}

type transferActionArgs struct {
	TenantID        string              `json:"tenantId"`
	FromUnitID      string              `json:"fromUnitId"`
	ToUnitID        string              `json:"toUnitId"`
	TransferDetails domain.LeaseDetails `json:"transferDetails"`
}

// OfflineQueue 基于 KV 的离线动作队列
// 整个队列以一个 JSON 数组存在单键下；本核心是单写者（见并发模型），
// 不需要列表原子操作
type OfflineQueue struct {
	kv     store.KV
	logger *zap.Logger
}

func NewOfflineQueue(kv store.KV, logger *zap.Logger) *OfflineQueue {
	return &OfflineQueue{kv: kv, logger: logger}
}

// Enqueue 追加一个待回放动作
func (q *OfflineQueue) Enqueue(ctx context.Context, actionType string, args any) error {
	actions, err := q.Pending(ctx)
	if err != nil {
		return err
	}

	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode offline action %s: %w", actionType, err)
	}

	actions = append(actions, OfflineAction{
		ID:        uuid.NewString(),
		Type:      actionType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})

	q.logger.Info("Queued offline action",
		zap.String("type", actionType),
		zap.Int("queue_length", len(actions)),
	)
	return q.save(ctx, actions)
}

// Pending 读取当前队列（空队列返回 nil, nil）
func (q *OfflineQueue) Pending(ctx context.Context) ([]OfflineAction, error) {
	raw, err := q.kv.Get(ctx, store.OfflineQueueKey)
	if err != nil {
		if errors.Is(err, store.ErrMiss) {
			return nil, nil
		}
		return nil, err
	}
	var actions []OfflineAction
	if err := json.Unmarshal([]byte(raw), &actions); err != nil {
		return nil, fmt.Errorf("decode offline queue: %w", err)
	}
	return actions, nil
}

// Clear 清空队列（回放完成后整体清空，与移动端行为一致）
func (q *OfflineQueue) Clear(ctx context.Context) error {
	return q.save(ctx, []OfflineAction{})
}

func (q *OfflineQueue) save(ctx context.Context, actions []OfflineAction) error {
	raw, err := json.Marshal(actions)
	if err != nil {
		return fmt.Errorf("encode offline queue: %w", err)
	}
	return q.kv.Set(ctx, store.OfflineQueueKey, string(raw), 0)
}

// Replayer 连接恢复后回放离线队列
// 逐个分发动作；单个动作失败只记日志不中断，整轮结束后清空队列
type Replayer struct {
	queue  *OfflineQueue
	svc    *AllocationService
	net    Network
	logger *zap.Logger
}

func NewReplayer(queue *OfflineQueue, svc *AllocationService, net Network, logger *zap.Logger) *Replayer {
	return &Replayer{queue: queue, svc: svc, net: net, logger: logger}
}

// Replay 回放一轮：离线时为空操作
func (r *Replayer) Replay(ctx context.Context) error {
	if r.net.Offline() {
		return nil
	}

	actions, err := r.queue.Pending(ctx)
	if err != nil {
		return err
	}
	if len(actions) == 0 {
		return nil
	}

	r.logger.Info("Replaying offline actions", zap.Int("count", len(actions)))
	for _, action := range actions {
		if err := r.dispatch(ctx, action); err != nil {
			r.logger.Warn("Offline action replay failed",
				zap.String("action_id", action.ID),
				zap.String("type", action.Type),
				zap.Error(err),
			)
		}
	}
	return r.queue.Clear(ctx)
}

func (r *Replayer) dispatch(ctx context.Context, action OfflineAction) error {
	switch action.Type {
	case ActionAllocate:
		var args allocateActionArgs
		if err := json.Unmarshal(action.Data, &args); err != nil {
			return fmt.Errorf("decode %s args: %w", action.Type, err)
		}
		res := r.svc.Allocate(ctx, args.TenantID, args.UnitID, args.PropertyID, args.LeaseDetails, args.IsReallocation)
		return res.Err
	case ActionDeallocate:
		var args deallocateActionArgs
		if err := json.Unmarshal(action.Data, &args); err != nil {
			return fmt.Errorf("decode %s args: %w", action.Type, err)
		}
		res := r.svc.Deallocate(ctx, args.TenantID, args.UnitID)
		return res.Err
	case ActionTransfer:
		var args transferActionArgs
		if err := json.Unmarshal(action.Data, &args); err != nil {
			return fmt.Errorf("decode %s args: %w", action.Type, err)
		}
		res := r.svc.Transfer(ctx, args.TenantID, args.FromUnitID, args.ToUnitID, args.TransferDetails)
		return res.Err
	case ActionUpdateTenant:
		var fields map[string]any
		if err := json.Unmarshal(action.Data, &fields); err != nil {
			return fmt.Errorf("decode %s args: %w", action.Type, err)
		}
		tenantID, _ := fields["id"].(string)
		if tenantID == "" {
			return fmt.Errorf("updateTenant action missing id")
		}
		res := r.svc.UpdateTenant(ctx, tenantID, fields)
		return res.Err
	default:
		return fmt.Errorf("unknown offline action type %q", action.Type)
	}
}
