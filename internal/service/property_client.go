package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"homemanager-allocation/internal/domain"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// AllocationPayload allocate_tenant 请求体
type AllocationPayload struct {
	TenantID   string `json:"tenant_id"`
	UnitID     string `json:"unit_id"`
	PropertyID string `json:"property_id"`
	domain.LeaseDetails
}

// TransferPayload transfer 请求体
type TransferPayload struct {
	TenantID   string `json:"tenant_id"`
	FromUnitID string `json:"from_unit_id"`
	ToUnitID   string `json:"to_unit_id"`
	domain.LeaseDetails
}

// UnitFilters 可出租单元查询条件（零值字段不随请求发送）
type UnitFilters struct {
	Bedrooms           int
	Bathrooms          float64
	MaxRent            float64
	MaxSecurityDeposit float64
}

// PropertyClient HomeManager 物业后端 REST 客户端
// 失败在此归一化为 *APIError；不做自动重试（重试由用户重新提交触发）
type PropertyClient struct {
	http   *resty.Client
	logger *zap.Logger
}

// NewPropertyClient 创建物业后端客户端
func NewPropertyClient(baseURL string, timeout time.Duration, logger *zap.Logger) *PropertyClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &PropertyClient{http: client, logger: logger}
}

// AllocateUnit 分配/重分配租客到单元
// method: POST = 首次分配，PATCH = 同单元重分配（更新租约条款）
func (c *PropertyClient) AllocateUnit(ctx context.Context, unitID, method string, payload AllocationPayload) (json.RawMessage, error) {
	url := fmt.Sprintf("/units/%s/allocate_tenant/", unitID)
	req := c.http.R().SetContext(ctx).SetBody(payload)

	c.logger.Info("Calling allocate_tenant",
		zap.String("method", method),
		zap.String("tenant_id", payload.TenantID),
		zap.String("unit_id", unitID),
	)

	var resp *resty.Response
	var err error
	if method == http.MethodPatch {
		resp, err = req.Patch(url)
	} else {
		resp, err = req.Post(url)
	}
	if apiErr := normalizeError(resp, err); apiErr != nil {
		c.logger.Error("allocate_tenant failed",
			zap.String("kind", apiErr.Kind.String()),
			zap.Int("status_code", apiErr.StatusCode),
			zap.String("unit_id", unitID),
		)
		return nil, apiErr
	}
	return resp.Body(), nil
}

// DeallocateUnit 解除租客与单元的关联
func (c *PropertyClient) DeallocateUnit(ctx context.Context, tenantID, unitID string) (json.RawMessage, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"tenant_id": tenantID}).
		Post(fmt.Sprintf("/units/%s/deallocate_tenant/", unitID))
	if apiErr := normalizeError(resp, err); apiErr != nil {
		c.logger.Error("deallocate_tenant failed",
			zap.String("kind", apiErr.Kind.String()),
			zap.String("tenant_id", tenantID),
			zap.String("unit_id", unitID),
		)
		return nil, apiErr
	}
	return resp.Body(), nil
}

// TransferTenant 跨单元转移（服务端原子完成，不在客户端拼接 deallocate+allocate）
func (c *PropertyClient) TransferTenant(ctx context.Context, tenantID, fromUnitID, toUnitID string, payload TransferPayload) (json.RawMessage, error) {
	c.logger.Info("Calling transfer",
		zap.String("tenant_id", tenantID),
		zap.String("from_unit_id", fromUnitID),
		zap.String("to_unit_id", toUnitID),
	)

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(payload).
		Post(fmt.Sprintf("/tenants/%s/transfer/", tenantID))
	if apiErr := normalizeError(resp, err); apiErr != nil {
		c.logger.Error("transfer failed",
			zap.String("kind", apiErr.Kind.String()),
			zap.String("tenant_id", tenantID),
		)
		return nil, apiErr
	}
	return resp.Body(), nil
}

// UpdateTenant 部分更新租客基础字段（PATCH，只发送变化字段）
func (c *PropertyClient) UpdateTenant(ctx context.Context, tenantID string, fields map[string]any) (json.RawMessage, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(fields).
		Patch(fmt.Sprintf("/tenants/%s/", tenantID))
	if apiErr := normalizeError(resp, err); apiErr != nil {
		c.logger.Error("tenant update failed",
			zap.String("kind", apiErr.Kind.String()),
			zap.String("tenant_id", tenantID),
		)
		return nil, apiErr
	}
	return resp.Body(), nil
}

// FetchUnit 拉取单元详情（总是走网络；是否绕过缓存由调用方决定）
func (c *PropertyClient) FetchUnit(ctx context.Context, unitID string) (*domain.Unit, error) {
	var unit domain.Unit
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&unit).
		Get(fmt.Sprintf("/units/%s/", unitID))
	if apiErr := normalizeError(resp, err); apiErr != nil {
		return nil, apiErr
	}
	return &unit, nil
}

// FetchAvailableUnits 拉取可出租单元列表
func (c *PropertyClient) FetchAvailableUnits(ctx context.Context, propertyID string, filters UnitFilters) ([]domain.Unit, error) {
	req := c.http.R().SetContext(ctx)
	if propertyID != "" {
		req.SetQueryParam("property_id", propertyID)
	}
	if filters.Bedrooms > 0 {
		req.SetQueryParam("bedrooms", strconv.Itoa(filters.Bedrooms))
	}
	if filters.Bathrooms > 0 {
		req.SetQueryParam("bathrooms", strconv.FormatFloat(filters.Bathrooms, 'f', -1, 64))
	}
	if filters.MaxRent > 0 {
		req.SetQueryParam("max_rent", strconv.FormatFloat(filters.MaxRent, 'f', -1, 64))
	}
	if filters.MaxSecurityDeposit > 0 {
		req.SetQueryParam("max_security_deposit", strconv.FormatFloat(filters.MaxSecurityDeposit, 'f', -1, 64))
	}

	var units []domain.Unit
	resp, err := req.SetResult(&units).Get("/units/available/")
	if apiErr := normalizeError(resp, err); apiErr != nil {
		return nil, apiErr
	}
	return units, nil
}
