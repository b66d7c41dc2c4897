package domain

// Unit 单元领域模型（对应 properties API 的 units 资源）
// 本核心只改写缓存副本中的 is_occupied，其余字段对本核心只读
type Unit struct {
	ID              string  `json:"id"`
	PropertyID      string  `json:"property_id"`
	UnitNumber      string  `json:"unit_number"`
	UnitType        string  `json:"unit_type,omitempty"`
	Floor           string  `json:"floor,omitempty"`
	Bedrooms        int     `json:"bedrooms,omitempty"`
	Bathrooms       float64 `json:"bathrooms,omitempty"`
	MonthlyRent     float64 `json:"monthly_rent"`
	SecurityDeposit float64 `json:"security_deposit"`
	IsOccupied      bool    `json:"is_occupied"`
}
