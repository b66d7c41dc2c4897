package domain

// LeaseDetails 分配/转移请求中随附的租约字段
// 只携带相对原租客记录有变化的字段（nil 表示未变，不随请求发送），
// 避免覆盖服务端对未触碰字段的并发修改
type LeaseDetails struct {
	LeaseStartDate  *string  `json:"lease_start_date,omitempty"`
	LeaseEndDate    *string  `json:"lease_end_date,omitempty"`
	SecurityDeposit *float64 `json:"security_deposit,omitempty"`
}

// IsEmpty 是否没有任何租约字段变化
func (d LeaseDetails) IsEmpty() bool {
	return d.LeaseStartDate == nil && d.LeaseEndDate == nil && d.SecurityDeposit == nil
}
