package schema

import "time"

// ImageFeePayment represents the image_fee_payments table - the record
// granting a contract real-image display in notifications. Independent
// of trending; validity requires is_active AND end_time in the future.
type ImageFeePayment struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// ContractAddress is the paying contract, stored lower-cased for EVM
	ContractAddress string `gorm:"column:contract_address;not null;index;type:text"`
	// IsActive is cleared when the payment is refunded or revoked
	IsActive bool `gorm:"column:is_active;not null;default:true"`
	// EndTime is when the entitlement expires
	EndTime time.Time `gorm:"column:end_time;not null;index"`
	// CreatedAt is the timestamp when the payment was recorded
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now()"`
}

// TableName specifies the table name for the ImageFeePayment model
func (ImageFeePayment) TableName() string {
	return "image_fee_payments"
}
