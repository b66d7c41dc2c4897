package domain

// Tenant 租客领域模型（对应后端 tenants API 的 JSON 字段）
// unit_id / property_id 可空且同生同灭：租客未入住任何单元时两者同时为 null
type Tenant struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	PhoneNumber     string   `json:"phone_number"`
	Email           string   `json:"email,omitempty"`
	Status          string   `json:"status,omitempty"`
	UnitID          *string  `json:"unit_id"`
	PropertyID      *string  `json:"property_id"`
	UnitNumber      *string  `json:"unit_number,omitempty"`
	PropertyName    *string  `json:"property_name,omitempty"`
	MoveInDate      string   `json:"move_in_date,omitempty"`
	LeaseStartDate  string   `json:"lease_start_date,omitempty"`
	LeaseEndDate    string   `json:"lease_end_date,omitempty"`
	SecurityDeposit *float64 `json:"security_deposit,omitempty"`
	Notes           string   `json:"notes,omitempty"`
}

// HasUnit 是否已分配单元
func (t *Tenant) HasUnit() bool {
	return t.UnitID != nil && *t.UnitID != ""
}

// CurrentUnitID 当前单元 ID（未分配时返回空串）
func (t *Tenant) CurrentUnitID() string {
	if t.UnitID == nil {
		return ""
	}
	return *t.UnitID
}
