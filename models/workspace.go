package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Workspace is a scoped collaborative area inside a tenant (e.g. "Trip").
// Workspace membership is independent of tenant membership: a tenant member
// sees nothing in a workspace they were not added to.
type Workspace struct {
	ID          uuid.UUID             `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
	Name        string                `gorm:"size:100;not null" json:"name"`
	TenantID    uuid.UUID             `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Memberships []WorkspaceMembership `gorm:"foreignKey:WorkspaceID" json:"members"`
}

func (w *Workspace) BeforeCreate(*gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

// Workspace roles.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
	RoleGuest  = "guest"
)

// ValidRole reports whether r is one of the three workspace roles.
func ValidRole(r string) bool {
	return r == RoleAdmin || r == RoleMember || r == RoleGuest
}

// WorkspaceMembership gives a user a role inside a workspace. A user holds at
// most one role per workspace (composite unique index).
type WorkspaceMembership struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"-"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_workspace" json:"user_id"`
	WorkspaceID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_workspace" json:"workspace_id"`
	Role        string    `gorm:"size:10;not null;default:member" json:"role"`
	User        User      `gorm:"foreignKey:UserID" json:"user"`
}

func (m *WorkspaceMembership) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
