package schema

import "time"

// LegacyTrending represents the legacy_trending table - the pre-payment-
// ledger trending records kept for contracts grandfathered in before the
// verified payment flow existed. Consulted only when the primary
// trending_payments lookup is negative or errors.
type LegacyTrending struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// ContractAddress is the trending contract, stored lower-cased for EVM
	ContractAddress string `gorm:"column:contract_address;not null;index;type:text"`
	// IsActive is cleared when the legacy grant is withdrawn
	IsActive bool `gorm:"column:is_active;not null;default:true"`
	// EndTime is when the legacy grant expires
	EndTime time.Time `gorm:"column:end_time;not null;index"`
	// CreatedAt is the timestamp when the record was created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now()"`
}

// TableName specifies the table name for the LegacyTrending model
func (LegacyTrending) TableName() string {
	return "legacy_trending"
}
