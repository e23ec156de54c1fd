package main

import (
	"net/http"

	"econoplan/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Access policy. Every check constrains the query to the authorized parent id
// up front; a scoped parent that does not exist and one the caller may not see
// are indistinguishable (both answer 403), so existence never leaks.

// isTenantMember reports whether the user has a tenant_members row.
func (a *App) isTenantMember(tenantID, userID uuid.UUID) (bool, error) {
	var n int64
	err := a.db.Model(&models.TenantMember{}).
		Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		Count(&n).Error
	return n > 0, err
}

// isWorkspaceMember reports whether the user holds any role in the workspace,
// with the workspace additionally pinned to the tenant from the path.
func (a *App) isWorkspaceMember(tenantID, workspaceID, userID uuid.UUID) (bool, error) {
	var n int64
	err := a.db.Model(&models.WorkspaceMembership{}).
		Joins("JOIN workspaces ON workspaces.id = workspace_memberships.workspace_id").
		Where("workspace_memberships.workspace_id = ? AND workspace_memberships.user_id = ? AND workspaces.tenant_id = ?",
			workspaceID, userID, tenantID).
		Count(&n).Error
	return n > 0, err
}

// pathID parses a uuid path parameter. Malformed ids are a validation error,
// not a scoping one.
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

// tenantScope authorizes the tenant id in the path for the caller. On denial
// it writes 403 and returns ok=false.
func (a *App) tenantScope(c *gin.Context, user *models.User) (uuid.UUID, bool) {
	tenantID, ok := pathID(c, "tenant_id")
	if !ok {
		return uuid.Nil, false
	}
	member, err := a.isTenantMember(tenantID, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return uuid.Nil, false
	}
	if !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "you do not have access to this tenant"})
		return uuid.Nil, false
	}
	return tenantID, true
}

// workspaceScope authorizes tenant_id + workspace_id for the caller and
// returns both. This is membership of the workspace, not of the tenant: a
// tenant member who was never added to the workspace is denied like anyone
// else.
func (a *App) workspaceScope(c *gin.Context, user *models.User) (tenantID, workspaceID uuid.UUID, ok bool) {
	tenantID, ok = pathID(c, "tenant_id")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	workspaceID, ok = pathID(c, "workspace_id")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	member, err := a.isWorkspaceMember(tenantID, workspaceID, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return uuid.Nil, uuid.Nil, false
	}
	if !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "you do not have access to this workspace"})
		return uuid.Nil, uuid.Nil, false
	}
	return tenantID, workspaceID, true
}
