package store

// 缓存键统一由此构造，消除散落在调用点的字符串拼写错误。
// 键格式与移动端离线缓存保持一致，便于排查线上缓存内容。

const (
	// TenantListKey 全量租客列表快照
	TenantListKey = "tenants"
	// OfflineQueueKey 离线动作队列（整个队列是一个 JSON 数组）
	OfflineQueueKey = "offline_action_queue"
)

// TenantKey 单个租客快照
func TenantKey(tenantID string) string { return "tenant_" + tenantID }

// UnitDetailKey 单元详情快照
func UnitDetailKey(unitID string) string { return "unit_detail_" + unitID }

// AvailableUnitsKey 某物业下可出租单元列表快照
// propertyID 为空时表示不限物业的全量列表
func AvailableUnitsKey(propertyID string) string {
	if propertyID == "" {
		return "available_units"
	}
	return "available_units_" + propertyID
}
