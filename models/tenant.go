package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tenant is the top-level billing account ("the household"). It owns its
// workspaces exclusively; deleting a tenant takes all of them with it.
type Tenant struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	// A user owns at most one tenant, hence the unique index.
	OwnerID    uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex" json:"owner_id"`
	Workspaces []Workspace `gorm:"foreignKey:TenantID" json:"workspaces"`
}

func (t *Tenant) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TenantMember links a user to a tenant. The owner is always a member too;
// provisioning inserts that row in the same transaction as the tenant itself.
type TenantMember struct {
	TenantID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"tenant_id"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
