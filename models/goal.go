package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Goal is a savings target inside a workspace. Amounts are fixed-point with
// two fraction digits (NUMERIC(10,2)).
type Goal struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Name          string          `gorm:"size:100;not null" json:"name"`
	WorkspaceID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"workspace_id"`
	TargetAmount  decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"target_amount"`
	CurrentAmount decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"current_amount"`
}

func (g *Goal) BeforeCreate(*gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}
