package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"time"

	"econoplan/models"
	"econoplan/pkg/money"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type transactionReq struct {
	Amount      string  `json:"amount" binding:"required"`
	Type        string  `json:"type" binding:"required,oneof=income expense"`
	Date        string  `json:"date"`
	Description string  `json:"description" binding:"max=255"`
	CategoryID  *string `json:"category_id"`
	GoalID      *string `json:"goal_id"`
}

var dateLayouts = []string{
	time.RFC3339,          // 2025-12-03T00:00:00Z
	"2006-01-02T15:04:05", // 2025-12-03T00:00:00
	"2006-01-02",          // 2025-12-03
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// resolveOptionalRef parses an optional uuid string field and checks the
// referenced row lives in the scoped workspace.
func (a *App) resolveOptionalRef(raw *string, workspaceID uuid.UUID,
	check func(uuid.UUID, uuid.UUID) (bool, error), what string) (*uuid.UUID, string) {
	if raw == nil || *raw == "" {
		return nil, ""
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, "invalid " + what + "_id"
	}
	ok, err := check(workspaceID, id)
	if err != nil {
		return nil, "query failed"
	}
	if !ok {
		return nil, what + " not found in this workspace"
	}
	return &id, ""
}

func (a *App) listTransactionsHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	_, workspaceID, ok := a.workspaceScope(c, user)
	if !ok {
		return
	}
	q := a.db.Where("workspace_id = ?", workspaceID)
	if txType := c.Query("type"); txType == models.TypeIncome || txType == models.TypeExpense {
		q = q.Where("type = ?", txType)
	}
	if start := c.Query("start"); start != "" {
		if t, ok := parseDate(start); ok {
			q = q.Where("date >= ?", t)
		}
	}
	if end := c.Query("end"); end != "" {
		if t, ok := parseDate(end); ok {
			q = q.Where("date < ?", t.Add(24*time.Hour))
		}
	}
	var transactions []models.Transaction
	if err := q.Order("date DESC, created_at DESC").Find(&transactions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, transactions)
}

// createTransactionHandler injects workspace and creator from the scope; the
// payload cannot reassign either.
func (a *App) createTransactionHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	_, workspaceID, ok := a.workspaceScope(c, user)
	if !ok {
		return
	}
	var req transactionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	amount, err := money.ParsePositive(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	date := time.Now()
	if req.Date != "" {
		t, ok := parseDate(req.Date)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
			return
		}
		date = t
	}
	categoryID, msg := a.resolveOptionalRef(req.CategoryID, workspaceID, a.categoryInWorkspace, "category")
	if msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}
	goalID, msg := a.resolveOptionalRef(req.GoalID, workspaceID, a.goalInWorkspace, "goal")
	if msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	transaction := models.Transaction{
		WorkspaceID: workspaceID,
		UserID:      user.ID,
		CategoryID:  categoryID,
		GoalID:      goalID,
		Amount:      amount,
		Type:        req.Type,
		Date:        date,
		Description: req.Description,
	}
	if err := a.db.Create(&transaction).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, transaction)
}

func (a *App) getTransactionHandler(c *gin.Context) {
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
	var transaction models.Transaction
	if err := a.db.Where("id = ? AND workspace_id = ?", id, workspaceID).
		First(&transaction).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
		return
	}
	c.JSON(http.StatusOK, transaction)
}

func (a *App) updateTransactionHandler(c *gin.Context) {
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
	var req transactionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	amount, err := money.ParsePositive(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var transaction models.Transaction
	if err := a.db.Where("id = ? AND workspace_id = ?", id, workspaceID).
		First(&transaction).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
		return
	}
	if req.Date != "" {
		t, ok := parseDate(req.Date)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
			return
		}
		transaction.Date = t
	}
	categoryID, msg := a.resolveOptionalRef(req.CategoryID, workspaceID, a.categoryInWorkspace, "category")
	if msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}
	goalID, msg := a.resolveOptionalRef(req.GoalID, workspaceID, a.goalInWorkspace, "goal")
	if msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}
	// workspace and creator stay as provisioned
	transaction.Amount = amount
	transaction.Type = req.Type
	transaction.Description = req.Description
	transaction.CategoryID = categoryID
	transaction.GoalID = goalID
	if err := a.db.Save(&transaction).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}
	c.JSON(http.StatusOK, transaction)
}

// transactionPatchReq carries a partial update. Pointer fields distinguish
// "not sent" from a sent value; the reference fields use json.RawMessage so an
// explicit null (unlink) is distinguishable from the key being absent
// (keep the stored reference).
type transactionPatchReq struct {
	Amount      *string         `json:"amount"`
	Type        *string         `json:"type"`
	Date        *string         `json:"date"`
	Description *string         `json:"description"`
	CategoryID  json.RawMessage `json:"category_id"`
	GoalID      json.RawMessage `json:"goal_id"`
}

// patchOptionalRef interprets a raw patch value for a reference field: absent
// keeps the stored value (set=false), JSON null clears it, and a uuid string
// re-links after the workspace check.
func (a *App) patchOptionalRef(raw json.RawMessage, workspaceID uuid.UUID,
	check func(uuid.UUID, uuid.UUID) (bool, error), what string) (set bool, id *uuid.UUID, msg string) {
	if len(raw) == 0 {
		return false, nil, ""
	}
	if string(raw) == "null" {
		return true, nil, ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return false, nil, "invalid " + what + "_id"
	}
	id, msg = a.resolveOptionalRef(&s, workspaceID, check, what)
	if msg != "" {
		return false, nil, msg
	}
	return true, id, ""
}

// patchTransactionHandler applies a partial update: only fields present in the
// payload change, everything else keeps its stored value.
func (a *App) patchTransactionHandler(c *gin.Context) {
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
	var req transactionPatchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var transaction models.Transaction
	if err := a.db.Where("id = ? AND workspace_id = ?", id, workspaceID).
		First(&transaction).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
		return
	}
	if req.Amount != nil {
		amount, err := money.ParsePositive(*req.Amount)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		transaction.Amount = amount
	}
	if req.Type != nil {
		if *req.Type != models.TypeIncome && *req.Type != models.TypeExpense {
			c.JSON(http.StatusBadRequest, gin.H{"error": "type must be income or expense"})
			return
		}
		transaction.Type = *req.Type
	}
	if req.Date != nil {
		t, ok := parseDate(*req.Date)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
			return
		}
		transaction.Date = t
	}
	if req.Description != nil {
		if len(*req.Description) > 255 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "description too long (max 255)"})
			return
		}
		transaction.Description = *req.Description
	}
	set, categoryID, msg := a.patchOptionalRef(req.CategoryID, workspaceID, a.categoryInWorkspace, "category")
	if msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}
	if set {
		transaction.CategoryID = categoryID
	}
	set, goalID, msg := a.patchOptionalRef(req.GoalID, workspaceID, a.goalInWorkspace, "goal")
	if msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}
	if set {
		transaction.GoalID = goalID
	}
	if err := a.db.Save(&transaction).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}
	c.JSON(http.StatusOK, transaction)
}

func (a *App) deleteTransactionHandler(c *gin.Context) {
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
	if err := a.deleteTransaction(workspaceID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "transaction deleted"})
}

// summaryHandler aggregates one month of workspace activity: totals and a
// per-category breakdown, all as 2-decimal strings.
func (a *App) summaryHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	_, workspaceID, ok := a.workspaceScope(c, user)
	if !ok {
		return
	}
	monthStr := c.Query("month")
	if monthStr == "" {
		monthStr = time.Now().Format("2006-01")
	}
	t, err := time.Parse("2006-01", monthStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month must be YYYY-MM"})
		return
	}
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	var transactions []models.Transaction
	if err := a.db.Where("workspace_id = ? AND date >= ? AND date < ?", workspaceID, start, end).
		Find(&transactions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	type categorySummary struct {
		CategoryID *uuid.UUID `json:"category_id"`
		Income     string     `json:"income"`
		Expense    string     `json:"expense"`
	}
	totalIncome, totalExpense := decimal.Zero, decimal.Zero
	type bucket struct{ income, expense decimal.Decimal }
	buckets := make(map[string]*bucket)
	keys := make(map[string]*uuid.UUID)
	for i := range transactions {
		tr := &transactions[i]
		key := ""
		if tr.CategoryID != nil {
			key = tr.CategoryID.String()
		}
		b, ok := buckets[key]
		if !ok {
			b = &bucket{income: decimal.Zero, expense: decimal.Zero}
			buckets[key] = b
			keys[key] = tr.CategoryID
		}
		if tr.Type == models.TypeIncome {
			b.income = b.income.Add(tr.Amount)
			totalIncome = totalIncome.Add(tr.Amount)
		} else {
			b.expense = b.expense.Add(tr.Amount)
			totalExpense = totalExpense.Add(tr.Amount)
		}
	}
	// stable breakdown order: uncategorized first, then by category id
	order := make([]string, 0, len(buckets))
	for key := range buckets {
		order = append(order, key)
	}
	sort.Strings(order)
	byCategory := make([]categorySummary, 0, len(buckets))
	for _, key := range order {
		b := buckets[key]
		byCategory = append(byCategory, categorySummary{
			CategoryID: keys[key],
			Income:     money.Format(b.income),
			Expense:    money.Format(b.expense),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"month":         monthStr,
		"total_income":  money.Format(totalIncome),
		"total_expense": money.Format(totalExpense),
		"balance":       money.Format(totalIncome.Sub(totalExpense)),
		"by_category":   byCategory,
	})
}
