package main

import (
	"econoplan/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// defaultCategories seeds every new workspace, in this order.
var defaultCategories = []string{"Food", "Transport", "Housing", "Leisure", "Health", "Other"}

// createTenant persists a tenant with the caller as owner AND member. Both
// rows land in one transaction: an owner without a membership must never be
// observable.
func (a *App) createTenant(owner *models.User, name string) (*models.Tenant, error) {
	tenant := models.Tenant{Name: name, OwnerID: owner.ID}
	err := a.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&tenant).Error; err != nil {
			return err
		}
		return tx.Create(&models.TenantMember{TenantID: tenant.ID, UserID: owner.ID}).Error
	})
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

// createWorkspace persists a workspace under the tenant, grants the creator
// the admin role and seeds the default categories. The whole sequence is one
// transaction; a workspace with a partial seed or no admin rolls back.
func (a *App) createWorkspace(tenantID uuid.UUID, creator *models.User, name string) (*models.Workspace, error) {
	workspace := models.Workspace{Name: name, TenantID: tenantID}
	err := a.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&workspace).Error; err != nil {
			return err
		}
		membership := models.WorkspaceMembership{
			UserID:      creator.ID,
			WorkspaceID: workspace.ID,
			Role:        models.RoleAdmin,
		}
		if err := tx.Create(&membership).Error; err != nil {
			return err
		}
		for _, name := range defaultCategories {
			if err := tx.Create(&models.Category{Name: name, WorkspaceID: workspace.ID}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &workspace, nil
}

// deleteTenant removes the tenant and everything under it. Cascades are
// enforced here, in order, rather than left to schema annotations.
func (a *App) deleteTenant(tenantID uuid.UUID) error {
	return a.db.Transaction(func(tx *gorm.DB) error {
		workspaceIDs := tx.Model(&models.Workspace{}).Select("id").Where("tenant_id = ?", tenantID)
		for _, m := range []interface{}{
			&models.Attachment{}, &models.Transaction{}, &models.Goal{},
			&models.Category{}, &models.WorkspaceMembership{},
		} {
			if err := tx.Where("workspace_id IN (?)", workspaceIDs).Delete(m).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("tenant_id = ?", tenantID).Delete(&models.Workspace{}).Error; err != nil {
			return err
		}
		if err := tx.Where("tenant_id = ?", tenantID).Delete(&models.TenantMember{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", tenantID).Delete(&models.Tenant{}).Error
	})
}

// deleteWorkspace removes one workspace and its children.
func (a *App) deleteWorkspace(tenantID, workspaceID uuid.UUID) error {
	return a.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND tenant_id = ?", workspaceID, tenantID).Delete(&models.Workspace{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		for _, m := range []interface{}{
			&models.Attachment{}, &models.Transaction{}, &models.Goal{},
			&models.Category{}, &models.WorkspaceMembership{},
		} {
			if err := tx.Where("workspace_id = ?", workspaceID).Delete(m).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// deleteCategory removes a category and NULLs references from transactions in
// the same transaction. History is never cascaded away.
func (a *App) deleteCategory(workspaceID, categoryID uuid.UUID) error {
	return a.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Transaction{}).
			Where("workspace_id = ? AND category_id = ?", workspaceID, categoryID).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		res := tx.Where("id = ? AND workspace_id = ?", categoryID, workspaceID).Delete(&models.Category{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// deleteGoal mirrors deleteCategory for goals.
func (a *App) deleteGoal(workspaceID, goalID uuid.UUID) error {
	return a.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Transaction{}).
			Where("workspace_id = ? AND goal_id = ?", workspaceID, goalID).
			Update("goal_id", nil).Error; err != nil {
			return err
		}
		res := tx.Where("id = ? AND workspace_id = ?", goalID, workspaceID).Delete(&models.Goal{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// deleteTransaction also drops the attachment row, if any. The file on disk is
// left behind; cleanup is an offline concern.
func (a *App) deleteTransaction(workspaceID, transactionID uuid.UUID) error {
	return a.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND workspace_id = ?", transactionID, workspaceID).Delete(&models.Transaction{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("transaction_id = ?", transactionID).Delete(&models.Attachment{}).Error
	})
}

// categoryInWorkspace verifies a caller-supplied category id belongs to the
// scoped workspace before it is linked from a transaction.
func (a *App) categoryInWorkspace(workspaceID, categoryID uuid.UUID) (bool, error) {
	var n int64
	err := a.db.Model(&models.Category{}).
		Where("id = ? AND workspace_id = ?", categoryID, workspaceID).Count(&n).Error
	return n > 0, err
}

func (a *App) goalInWorkspace(workspaceID, goalID uuid.UUID) (bool, error) {
	var n int64
	err := a.db.Model(&models.Goal{}).
		Where("id = ? AND workspace_id = ?", goalID, workspaceID).Count(&n).Error
	return n > 0, err
}
