package main

import (
	"errors"
	"net/http"
	"strings"

	"econoplan/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// listTenantsHandler returns every tenant the caller is a member of, each with
// its workspaces and their memberships nested.
func (a *App) listTenantsHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	var tenants []models.Tenant
	if err := a.db.
		Joins("JOIN tenant_members ON tenant_members.tenant_id = tenants.id").
		Where("tenant_members.user_id = ?", user.ID).
		Preload("Workspaces.Memberships.User").
		Find(&tenants).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, tenants)
}

// createTenantHandler: any authenticated user may create a tenant; they become
// owner and first member.
func (a *App) createTenantHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	var req struct {
		Name string `json:"name" binding:"required,max=100"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tenant, err := a.createTenant(user, strings.TrimSpace(req.Name))
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "you already own a tenant"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, tenant)
}

func (a *App) getTenantHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	tenantID, ok := a.tenantScope(c, user)
	if !ok {
		return
	}
	var tenant models.Tenant
	if err := a.db.Preload("Workspaces.Memberships.User").
		First(&tenant, "id = ?", tenantID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, tenant)
}

func (a *App) updateTenantHandler(c *gin.Context) {
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
	var tenant models.Tenant
	if err := a.db.First(&tenant, "id = ?", tenantID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	tenant.Name = strings.TrimSpace(req.Name)
	if err := a.db.Save(&tenant).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}
	c.JSON(http.StatusOK, tenant)
}

// patchTenantHandler: partial update. A payload without name is a no-op.
func (a *App) patchTenantHandler(c *gin.Context) {
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
		Name *string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var tenant models.Tenant
	if err := a.db.First(&tenant, "id = ?", tenantID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" || len(name) > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name must be 1-100 characters"})
			return
		}
		tenant.Name = name
	}
	if err := a.db.Save(&tenant).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}
	c.JSON(http.StatusOK, tenant)
}

func (a *App) deleteTenantHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	tenantID, ok := a.tenantScope(c, user)
	if !ok {
		return
	}
	if err := a.deleteTenant(tenantID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "tenant deleted"})
}

// addTenantMemberHandler adds an existing user (by email) to the tenant.
func (a *App) addTenantMemberHandler(c *gin.Context) {
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
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var target models.User
	if err := a.db.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).
		First(&target).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no user with that email"})
		return
	}
	member := models.TenantMember{TenantID: tenantID, UserID: target.ID}
	if err := a.db.Create(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "already a member"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, member)
}
