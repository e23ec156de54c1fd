package main

import (
	"github.com/gin-gonic/gin"
)

// setupRoutes wires the resource tree:
//
//	/api/tenants/{tenant_id}/workspaces/{workspace_id}/{categories|goals|transactions}/{id}
//
// Auth endpoints are the only ones outside the bearer-token group.
func (a *App) setupRoutes(r *gin.Engine) {
	r.Use(requestLogger(a.log))

	api := r.Group("/api")
	api.POST("/auth/register", a.registerHandler)
	api.POST("/auth/login", a.loginHandler)
	api.POST("/auth/refresh", a.refreshHandler)
	api.POST("/auth/revoke", a.revokeHandler)

	authed := api.Group("")
	authed.Use(a.requireUser())
	authed.GET("/me", a.meHandler)

	authed.GET("/tenants", a.listTenantsHandler)
	authed.POST("/tenants", a.createTenantHandler)
	authed.GET("/tenants/:tenant_id", a.getTenantHandler)
	authed.PUT("/tenants/:tenant_id", a.updateTenantHandler)
	authed.PATCH("/tenants/:tenant_id", a.patchTenantHandler)
	authed.DELETE("/tenants/:tenant_id", a.deleteTenantHandler)
	authed.POST("/tenants/:tenant_id/members", a.addTenantMemberHandler)

	authed.GET("/tenants/:tenant_id/workspaces", a.listWorkspacesHandler)
	authed.POST("/tenants/:tenant_id/workspaces", a.createWorkspaceHandler)

	ws := authed.Group("/tenants/:tenant_id/workspaces/:workspace_id")
	ws.GET("", a.getWorkspaceHandler)
	ws.PUT("", a.updateWorkspaceHandler)
	ws.PATCH("", a.patchWorkspaceHandler)
	ws.DELETE("", a.deleteWorkspaceHandler)

	ws.GET("/members", a.listWorkspaceMembersHandler)
	ws.POST("/members", a.addWorkspaceMemberHandler)
	ws.DELETE("/members/:id", a.removeWorkspaceMemberHandler)

	ws.GET("/categories", a.listCategoriesHandler)
	ws.POST("/categories", a.createCategoryHandler)
	ws.GET("/categories/:id", a.getCategoryHandler)
	ws.PUT("/categories/:id", a.updateCategoryHandler)
	ws.PATCH("/categories/:id", a.patchCategoryHandler)
	ws.DELETE("/categories/:id", a.deleteCategoryHandler)

	ws.GET("/goals", a.listGoalsHandler)
	ws.POST("/goals", a.createGoalHandler)
	ws.GET("/goals/:id", a.getGoalHandler)
	ws.PUT("/goals/:id", a.updateGoalHandler)
	ws.PATCH("/goals/:id", a.patchGoalHandler)
	ws.DELETE("/goals/:id", a.deleteGoalHandler)

	ws.GET("/transactions", a.listTransactionsHandler)
	ws.POST("/transactions", a.createTransactionHandler)
	ws.GET("/transactions/:id", a.getTransactionHandler)
	ws.PUT("/transactions/:id", a.updateTransactionHandler)
	ws.PATCH("/transactions/:id", a.patchTransactionHandler)
	ws.DELETE("/transactions/:id", a.deleteTransactionHandler)
	ws.POST("/transactions/:id/receipt", a.uploadReceiptHandler)
	ws.GET("/transactions/:id/receipt", a.getReceiptHandler)

	ws.GET("/summary", a.summaryHandler)
}
