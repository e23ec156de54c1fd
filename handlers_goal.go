package main

import (
	"errors"
	"net/http"
	"strings"

	"econoplan/models"
	"econoplan/pkg/money"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type goalReq struct {
	Name          string `json:"name" binding:"required,max=100"`
	TargetAmount  string `json:"target_amount" binding:"required"`
	CurrentAmount string `json:"current_amount"`
}

// parseGoalAmounts validates both decimal fields; current defaults to 0.
func parseGoalAmounts(req *goalReq) (target, current decimal.Decimal, err error) {
	target, err = money.ParsePositive(req.TargetAmount)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	current = decimal.Zero
	if req.CurrentAmount != "" {
		current, err = money.Parse(req.CurrentAmount)
		if err != nil {
			return decimal.Zero, decimal.Zero, err
		}
	}
	return target, current, nil
}

func (a *App) listGoalsHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	_, workspaceID, ok := a.workspaceScope(c, user)
	if !ok {
		return
	}
	var goals []models.Goal
	if err := a.db.Where("workspace_id = ?", workspaceID).
		Order("created_at ASC").Find(&goals).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, goals)
}

func (a *App) createGoalHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	_, workspaceID, ok := a.workspaceScope(c, user)
	if !ok {
		return
	}
	var req goalReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	target, current, err := parseGoalAmounts(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	goal := models.Goal{
		Name:          strings.TrimSpace(req.Name),
		WorkspaceID:   workspaceID,
		TargetAmount:  target,
		CurrentAmount: current,
	}
	if err := a.db.Create(&goal).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, goal)
}

func (a *App) getGoalHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	_, workspaceID, ok := a.workspaceScope(c, user)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var goal models.Goal
	if err := a.db.Where("id = ? AND workspace_id = ?", id, workspaceID).
		First(&goal).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "goal not found"})
		return
	}
	c.JSON(http.StatusOK, goal)
}

func (a *App) updateGoalHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	_, workspaceID, ok := a.workspaceScope(c, user)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req goalReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	target, current, err := parseGoalAmounts(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var goal models.Goal
	if err := a.db.Where("id = ? AND workspace_id = ?", id, workspaceID).
		First(&goal).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "goal not found"})
		return
	}
	goal.Name = strings.TrimSpace(req.Name)
	goal.TargetAmount = target
	if req.CurrentAmount != "" {
		goal.CurrentAmount = current
	}
	if err := a.db.Save(&goal).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}
	c.JSON(http.StatusOK, goal)
}

// patchGoalHandler applies a partial update; fields absent from the payload
// keep their stored values.
func (a *App) patchGoalHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	_, workspaceID, ok := a.workspaceScope(c, user)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Name          *string `json:"name"`
		TargetAmount  *string `json:"target_amount"`
		CurrentAmount *string `json:"current_amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var goal models.Goal
	if err := a.db.Where("id = ? AND workspace_id = ?", id, workspaceID).
		First(&goal).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "goal not found"})
		return
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" || len(name) > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name must be 1-100 characters"})
			return
		}
		goal.Name = name
	}
	if req.TargetAmount != nil {
		target, err := money.ParsePositive(*req.TargetAmount)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		goal.TargetAmount = target
	}
	if req.CurrentAmount != nil {
		current, err := money.Parse(*req.CurrentAmount)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		goal.CurrentAmount = current
	}
	if err := a.db.Save(&goal).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}
	c.JSON(http.StatusOK, goal)
}

func (a *App) deleteGoalHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	_, workspaceID, ok := a.workspaceScope(c, user)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := a.deleteGoal(workspaceID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "goal not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "goal deleted"})
}
