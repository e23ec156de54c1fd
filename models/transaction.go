package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transaction types.
const (
	TypeExpense = "expense"
	TypeIncome  = "income"
)

// Transaction is a single income or expense record. Category and goal links
// degrade to NULL when the referenced row is deleted; the transaction itself
// is history and must survive. UserID records the creator and is injected by
// the server, never bound from request payloads.
type Transaction struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	WorkspaceID uuid.UUID       `gorm:"type:uuid;not null;index" json:"workspace_id"`
	UserID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	CategoryID  *uuid.UUID      `gorm:"type:uuid;index" json:"category_id"`
	GoalID      *uuid.UUID      `gorm:"type:uuid;index" json:"goal_id"`
	Amount      decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount"`
	Type        string          `gorm:"size:16;not null" json:"type"`
	Date        time.Time       `gorm:"not null;index" json:"date"`
	Description string          `gorm:"size:255" json:"description"`
}

func (t *Transaction) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
