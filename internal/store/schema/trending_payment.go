package schema

import "time"

// TrendingPayment represents the trending_payments table - the primary
// payment-verified record granting a contract trending visibility.
// Validity requires is_active AND end_time in the future; rows are
// written by the external payment-verification component.
type TrendingPayment struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// ContractAddress is the paying contract, stored lower-cased for EVM
	ContractAddress string `gorm:"column:contract_address;not null;index;type:text"`
	// Tier is the purchased trending tier
	Tier int `gorm:"column:tier;not null;default:1"`
	// IsActive is cleared when the payment is refunded or revoked
	IsActive bool `gorm:"column:is_active;not null;default:true"`
	// StartTime is when the entitlement began
	StartTime time.Time `gorm:"column:start_time;not null"`
	// EndTime is when the entitlement expires
	EndTime time.Time `gorm:"column:end_time;not null;index"`
	// CreatedAt is the timestamp when the payment was recorded
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now()"`
}

// TableName specifies the table name for the TrendingPayment model
func (TrendingPayment) TableName() string {
	return "trending_payments"
}
