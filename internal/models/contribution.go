package models

import "time"

// Contribution is an append-only ledger entry for a completed payment from a
// backer to a project. PaymentID is the gateway payment identifier and doubles
// as the idempotency key: the unique index guarantees at most one row per
// gateway payment, so a retried confirmation can never double-credit.
type Contribution struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	ProjectID uint    `gorm:"not null;index" json:"project_id"`
	RewardID  *uint   `gorm:"index" json:"reward_id"`
	BackerID  uint    `gorm:"not null;index" json:"backer_id"`
	Amount    float64 `gorm:"not null" json:"amount"`
	OrderID   string  `gorm:"size:128;not null" json:"order_id"`
	PaymentID string  `gorm:"size:128;not null;uniqueIndex" json:"payment_id"`
	Message   string  `gorm:"type:text" json:"message"`
	Anonymous bool    `gorm:"default:false" json:"anonymous"`
	Status    string  `gorm:"size:20;not null;index;default:'completed'" json:"status"`

	CreatedAt time.Time `json:"created_at"`

	Project *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Backer  *User    `gorm:"foreignKey:BackerID" json:"backer,omitempty"`
}

func (Contribution) TableName() string {
	return "contributions"
}
