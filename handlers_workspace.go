package main

import (
	"errors"
	"net/http"
	"strings"

	"econoplan/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// listWorkspacesHandler lists workspaces under the tenant in the path that the
// caller is a member of. Tenant membership alone shows nothing here.
func (a *App) listWorkspacesHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	tenantID, ok := pathID(c, "tenant_id")
	if !ok {
		return
	}
	var workspaces []models.Workspace
	if err := a.db.
		Joins("JOIN workspace_memberships ON workspace_memberships.workspace_id = workspaces.id").
		Where("workspaces.tenant_id = ? AND workspace_memberships.user_id = ?", tenantID, user.ID).
		Preload("Memberships.User").
		Find(&workspaces).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, workspaces)
}

// createWorkspaceHandler requires tenant membership. A missing or foreign
// tenant answers 403, not 404.
func (a *App) createWorkspaceHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	tenantID, ok := a.tenantScope(c, user)
	if !ok {
		return
	}
	var req struct {
		Name string `json:"name" binding:"required,max=100"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	workspace, err := a.createWorkspace(tenantID, user, strings.TrimSpace(req.Name))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	var out models.Workspace
	if err := a.db.Preload("Memberships.User").First(&out, "id = ?", workspace.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (a *App) getWorkspaceHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	_, workspaceID, ok := a.workspaceScope(c, user)
	if !ok {
		return
	}
	var workspace models.Workspace
	if err := a.db.Preload("Memberships.User").First(&workspace, "id = ?", workspaceID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, workspace)
}

func (a *App) updateWorkspaceHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	_, workspaceID, ok := a.workspaceScope(c, user)
	if !ok {
		return
	}
	var req struct {
		Name string `json:"name" binding:"required,max=100"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := a.db.Model(&models.Workspace{}).Where("id = ?", workspaceID).
		Update("name", strings.TrimSpace(req.Name)).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}
	var workspace models.Workspace
	if err := a.db.Preload("Memberships.User").First(&workspace, "id = ?", workspaceID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, workspace)
}

func (a *App) deleteWorkspaceHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	tenantID, workspaceID, ok := a.workspaceScope(c, user)
	if !ok {
		return
	}
	if err := a.deleteWorkspace(tenantID, workspaceID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "workspace deleted"})
}

// patchWorkspaceHandler: partial update. A payload without name is a no-op.
func (a *App) patchWorkspaceHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	_, workspaceID, ok := a.workspaceScope(c, user)
	if !ok {
		return
	}
	var req struct {
		Name *string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var workspace models.Workspace
	if err := a.db.First(&workspace, "id = ?", workspaceID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" || len(name) > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name must be 1-100 characters"})
			return
		}
		workspace.Name = name
	}
	if err := a.db.Save(&workspace).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}
	c.JSON(http.StatusOK, workspace)
}

func (a *App) listWorkspaceMembersHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	_, workspaceID, ok := a.workspaceScope(c, user)
	if !ok {
		return
	}
	var memberships []models.WorkspaceMembership
	if err := a.db.Where("workspace_id = ?", workspaceID).
		Preload("User").Find(&memberships).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, memberships)
}

// addWorkspaceMemberHandler adds a user (by email) with a role. The (user,
// workspace) unique index turns duplicate adds into a 409.
func (a *App) addWorkspaceMemberHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	_, workspaceID, ok := a.workspaceScope(c, user)
	if !ok {
		return
	}
	var req struct {
		Email string `json:"email" binding:"required"`
		Role  string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Role == "" {
		req.Role = models.RoleMember
	}
	if !models.ValidRole(req.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role must be admin, member or guest"})
		return
	}
	var target models.User
	if err := a.db.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).
		First(&target).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no user with that email"})
		return
	}
	membership := models.WorkspaceMembership{UserID: target.ID, WorkspaceID: workspaceID, Role: req.Role}
	if err := a.db.Create(&membership).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "user is already a member of this workspace"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	membership.User = target
	c.JSON(http.StatusCreated, membership)
}

func (a *App) removeWorkspaceMemberHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	_, workspaceID, ok := a.workspaceScope(c, user)
	if !ok {
		return
	}
	membershipID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var membership models.WorkspaceMembership
	if err := a.db.Where("id = ? AND workspace_id = ?", membershipID, workspaceID).
		First(&membership).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "membership not found"})
		return
	}
	// a workspace must keep at least one admin
	if membership.Role == models.RoleAdmin {
		var admins int64
		if err := a.db.Model(&models.WorkspaceMembership{}).
			Where("workspace_id = ? AND role = ?", workspaceID, models.RoleAdmin).
			Count(&admins).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
			return
		}
		if admins <= 1 {
			c.JSON(http.StatusConflict, gin.H{"error": "cannot remove the last admin of a workspace"})
			return
		}
	}
	if err := a.db.Delete(&membership).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "member removed"})
}
