package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"econoplan/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) (*App, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &Config{}
	cfg.Server.Mode = "test"
	cfg.Database.Driver = "sqlite"
	cfg.Database.DSN = filepath.Join(t.TempDir(), "test.db")
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.AccessTTLMin = 60
	cfg.JWT.RefreshTTLDays = 30
	cfg.Upload.BaseDir = t.TempDir()

	db, err := openDB(cfg)
	require.NoError(t, err)
	require.NoError(t, autoMigrate(db))

	app := newApp(cfg, db, zerolog.Nop())
	r := gin.New()
	app.setupRoutes(r)
	return app, r
}

// performRequest runs a request against the engine with optional bearer token.
func performRequest(r http.Handler, method, path string, body io.Reader, token string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return out
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var out []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return out
}

// registerAndLogin creates a user and returns an access token.
func registerAndLogin(t *testing.T, r http.Handler, email string) string {
	t.Helper()
	rec := performRequest(r, http.MethodPost, "/api/auth/register",
		jsonBody(t, gin.H{"email": email, "username": email, "password": "secret1"}), "")
	require.Equal(t, http.StatusCreated, rec.Code, "register: %s", rec.Body.String())

	rec = performRequest(r, http.MethodPost, "/api/auth/login",
		jsonBody(t, gin.H{"email": email, "password": "secret1"}), "")
	require.Equal(t, http.StatusOK, rec.Code, "login: %s", rec.Body.String())
	token, _ := decode(t, rec)["token"].(string)
	require.NotEmpty(t, token)
	return token
}

// createTenant returns the new tenant id.
func createTenant(t *testing.T, r http.Handler, token, name string) string {
	t.Helper()
	rec := performRequest(r, http.MethodPost, "/api/tenants", jsonBody(t, gin.H{"name": name}), token)
	require.Equal(t, http.StatusCreated, rec.Code, "create tenant: %s", rec.Body.String())
	id, _ := decode(t, rec)["id"].(string)
	require.NotEmpty(t, id)
	return id
}

// createWorkspace returns the new workspace id.
func createWorkspace(t *testing.T, r http.Handler, token, tenantID, name string) string {
	t.Helper()
	rec := performRequest(r, http.MethodPost, "/api/tenants/"+tenantID+"/workspaces",
		jsonBody(t, gin.H{"name": name}), token)
	require.Equal(t, http.StatusCreated, rec.Code, "create workspace: %s", rec.Body.String())
	id, _ := decode(t, rec)["id"].(string)
	require.NotEmpty(t, id)
	return id
}

// performUpload posts a multipart body with its own content type.
func performUpload(r http.Handler, path string, body io.Reader, contentType, token string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

// receiptForm builds a multipart form carrying a small PNG.
func receiptForm(t *testing.T, filename string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	require.NoError(t, png.Encode(fw, image.NewRGBA(image.Rect(0, 0, 8, 8))))
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestAuthFlow(t *testing.T) {
	_, r := newTestApp(t)

	rec := performRequest(r, http.MethodPost, "/api/auth/register",
		jsonBody(t, gin.H{"email": "a@example.com", "username": "alice", "password": "secret1"}), "")
	require.Equal(t, http.StatusCreated, rec.Code)

	// same email again
	rec = performRequest(r, http.MethodPost, "/api/auth/register",
		jsonBody(t, gin.H{"email": "a@example.com", "password": "secret1"}), "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	// wrong password
	rec = performRequest(r, http.MethodPost, "/api/auth/login",
		jsonBody(t, gin.H{"email": "a@example.com", "password": "nope"}), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = performRequest(r, http.MethodPost, "/api/auth/login",
		jsonBody(t, gin.H{"email": "a@example.com", "password": "secret1"}), "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	token, _ := body["token"].(string)
	refresh, _ := body["refresh_token"].(string)
	require.NotEmpty(t, token)
	require.NotEmpty(t, refresh)

	rec = performRequest(r, http.MethodGet, "/api/me", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a@example.com", decode(t, rec)["email"])

	// password hash must never serialize
	assert.NotContains(t, rec.Body.String(), "HashedPassword")

	// refresh rotates
	rec = performRequest(r, http.MethodPost, "/api/auth/refresh",
		jsonBody(t, gin.H{"refresh_token": refresh}), "")
	require.Equal(t, http.StatusOK, rec.Code)
	newRefresh, _ := decode(t, rec)["refresh_token"].(string)
	require.NotEmpty(t, newRefresh)

	// the used refresh token is revoked
	rec = performRequest(r, http.MethodPost, "/api/auth/refresh",
		jsonBody(t, gin.H{"refresh_token": refresh}), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// no token -> 401
	rec = performRequest(r, http.MethodGet, "/api/tenants", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTenantProvisioning(t *testing.T) {
	app, r := newTestApp(t)
	token := registerAndLogin(t, r, "owner@example.com")

	tenantID := createTenant(t, r, token, "Home")

	// owner is a member immediately after creation
	var tenant models.Tenant
	require.NoError(t, app.db.First(&tenant, "id = ?", tenantID).Error)
	var n int64
	require.NoError(t, app.db.Model(&models.TenantMember{}).
		Where("tenant_id = ? AND user_id = ?", tenant.ID, tenant.OwnerID).Count(&n).Error)
	assert.EqualValues(t, 1, n, "owner must be a member")

	// a user owns at most one tenant
	rec := performRequest(r, http.MethodPost, "/api/tenants", jsonBody(t, gin.H{"name": "Second"}), token)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// members see the tenant with nested workspaces
	rec = performRequest(r, http.MethodGet, "/api/tenants", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	tenants := decodeList(t, rec)
	require.Len(t, tenants, 1)
	assert.Equal(t, "Home", tenants[0]["name"])

	// non-members get 403 on read, update and delete
	other := registerAndLogin(t, r, "other@example.com")
	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		rec = performRequest(r, method, "/api/tenants/"+tenantID, nil, other)
		assert.Equal(t, http.StatusForbidden, rec.Code, method)
	}
	rec = performRequest(r, http.MethodPut, "/api/tenants/"+tenantID, jsonBody(t, gin.H{"name": "X"}), other)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// and an empty list
	rec = performRequest(r, http.MethodGet, "/api/tenants", nil, other)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeList(t, rec), 0)
}

func TestWorkspaceProvisioning(t *testing.T) {
	app, r := newTestApp(t)
	tokenA := registerAndLogin(t, r, "a@example.com")
	tenantID := createTenant(t, r, tokenA, "Home")
	workspaceID := createWorkspace(t, r, tokenA, tenantID, "Trip")
	base := "/api/tenants/" + tenantID + "/workspaces/" + workspaceID

	// creator got the admin role
	var memberships []models.WorkspaceMembership
	require.NoError(t, app.db.Where("workspace_id = ?", workspaceID).Find(&memberships).Error)
	require.Len(t, memberships, 1)
	assert.Equal(t, models.RoleAdmin, memberships[0].Role)

	// exactly the six default categories, in seed order
	rec := performRequest(r, http.MethodGet, base+"/categories", nil, tokenA)
	require.Equal(t, http.StatusOK, rec.Code)
	categories := decodeList(t, rec)
	require.Len(t, categories, 6)
	names := make([]string, 0, 6)
	for _, cat := range categories {
		names = append(names, cat["name"].(string))
	}
	assert.ElementsMatch(t, []string{"Food", "Transport", "Housing", "Leisure", "Health", "Other"}, names)

	// B is not a member: everything under the workspace answers 403
	tokenB := registerAndLogin(t, r, "b@example.com")
	rec = performRequest(r, http.MethodGet, base, nil, tokenB)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = performRequest(r, http.MethodGet, base+"/categories", nil, tokenB)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = performRequest(r, http.MethodPost, base+"/transactions",
		jsonBody(t, gin.H{"amount": "10.00", "type": "expense"}), tokenB)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = performRequest(r, http.MethodDelete, base, nil, tokenB)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// A adds B as guest; B now sees the six categories
	rec = performRequest(r, http.MethodPost, base+"/members",
		jsonBody(t, gin.H{"email": "b@example.com", "role": "guest"}), tokenA)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = performRequest(r, http.MethodGet, base, nil, tokenB)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = performRequest(r, http.MethodGet, base+"/categories", nil, tokenB)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeList(t, rec), 6)

	// adding B twice hits the (user, workspace) unique index
	rec = performRequest(r, http.MethodPost, base+"/members",
		jsonBody(t, gin.H{"email": "b@example.com", "role": "member"}), tokenA)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestWorkspaceMemberRemoval(t *testing.T) {
	_, r := newTestApp(t)
	tokenA := registerAndLogin(t, r, "a@example.com")
	registerAndLogin(t, r, "b@example.com")
	tenantID := createTenant(t, r, tokenA, "Home")
	workspaceID := createWorkspace(t, r, tokenA, tenantID, "Trip")
	base := "/api/tenants/" + tenantID + "/workspaces/" + workspaceID

	rec := performRequest(r, http.MethodPost, base+"/members",
		jsonBody(t, gin.H{"email": "b@example.com", "role": "guest"}), tokenA)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = performRequest(r, http.MethodGet, base+"/members", nil, tokenA)
	require.Equal(t, http.StatusOK, rec.Code)
	members := decodeList(t, rec)
	require.Len(t, members, 2)
	var adminID, guestID string
	for _, m := range members {
		if m["role"] == "admin" {
			adminID = m["id"].(string)
		} else {
			guestID = m["id"].(string)
		}
	}
	require.NotEmpty(t, adminID)
	require.NotEmpty(t, guestID)

	// the only admin cannot be removed
	rec = performRequest(r, http.MethodDelete, base+"/members/"+adminID, nil, tokenA)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = performRequest(r, http.MethodDelete, base+"/members/"+guestID, nil, tokenA)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = performRequest(r, http.MethodGet, base+"/members", nil, tokenA)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeList(t, rec), 1)
}

func TestWorkspaceCreateScoping(t *testing.T) {
	_, r := newTestApp(t)
	tokenA := registerAndLogin(t, r, "a@example.com")
	tenantID := createTenant(t, r, tokenA, "Home")

	// B may not create workspaces under A's tenant
	tokenB := registerAndLogin(t, r, "b@example.com")
	rec := performRequest(r, http.MethodPost, "/api/tenants/"+tenantID+"/workspaces",
		jsonBody(t, gin.H{"name": "Sneaky"}), tokenB)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// a tenant that does not exist is indistinguishable from one B cannot see
	rec = performRequest(r, http.MethodPost,
		"/api/tenants/00000000-0000-0000-0000-000000000001/workspaces",
		jsonBody(t, gin.H{"name": "Ghost"}), tokenB)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// tenant membership alone is not workspace membership
	workspaceID := createWorkspace(t, r, tokenA, tenantID, "Trip")
	rec = performRequest(r, http.MethodPost, "/api/tenants/"+tenantID+"/members",
		jsonBody(t, gin.H{"email": "b@example.com"}), tokenA)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = performRequest(r, http.MethodGet,
		"/api/tenants/"+tenantID+"/workspaces/"+workspaceID, nil, tokenB)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	// ...but B may now create their own workspace under the tenant
	rec = performRequest(r, http.MethodPost, "/api/tenants/"+tenantID+"/workspaces",
		jsonBody(t, gin.H{"name": "B's corner"}), tokenB)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestTransactionValidation(t *testing.T) {
	_, r := newTestApp(t)
	token := registerAndLogin(t, r, "a@example.com")
	tenantID := createTenant(t, r, token, "Home")
	workspaceID := createWorkspace(t, r, token, tenantID, "Trip")
	base := "/api/tenants/" + tenantID + "/workspaces/" + workspaceID + "/transactions"

	// three fraction digits are rejected, not truncated
	rec := performRequest(r, http.MethodPost, base,
		jsonBody(t, gin.H{"amount": "123.456", "type": "expense"}), token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	for _, amount := range []string{"abc", "-5.00", "0", "100000000.00"} {
		rec = performRequest(r, http.MethodPost, base,
			jsonBody(t, gin.H{"amount": amount, "type": "expense"}), token)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "amount %q", amount)
	}

	rec = performRequest(r, http.MethodPost, base,
		jsonBody(t, gin.H{"amount": "10.00", "type": "transfer"}), token)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "unknown type")

	// a category from another workspace is rejected
	otherWS := createWorkspace(t, r, token, tenantID, "Other")
	rec = performRequest(r, http.MethodGet,
		"/api/tenants/"+tenantID+"/workspaces/"+otherWS+"/categories", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	foreignCat := decodeList(t, rec)[0]["id"].(string)
	rec = performRequest(r, http.MethodPost, base,
		jsonBody(t, gin.H{"amount": "10.00", "type": "expense", "category_id": foreignCat}), token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// valid create: creator and workspace are injected, amount kept exact
	rec = performRequest(r, http.MethodPost, base,
		jsonBody(t, gin.H{"amount": "123.45", "type": "income", "description": "salary"}), token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	tx := decode(t, rec)
	assert.Equal(t, "123.45", tx["amount"])
	assert.Equal(t, workspaceID, tx["workspace_id"])
	assert.NotEmpty(t, tx["user_id"])
}

func TestCategoryDeletePreservesTransactions(t *testing.T) {
	_, r := newTestApp(t)
	token := registerAndLogin(t, r, "a@example.com")
	tenantID := createTenant(t, r, token, "Home")
	workspaceID := createWorkspace(t, r, token, tenantID, "Trip")
	base := "/api/tenants/" + tenantID + "/workspaces/" + workspaceID

	rec := performRequest(r, http.MethodGet, base+"/categories", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	categoryID := decodeList(t, rec)[0]["id"].(string)

	rec = performRequest(r, http.MethodPost, base+"/transactions",
		jsonBody(t, gin.H{"amount": "42.00", "type": "expense", "category_id": categoryID}), token)
	require.Equal(t, http.StatusCreated, rec.Code)
	txID := decode(t, rec)["id"].(string)

	rec = performRequest(r, http.MethodDelete, base+"/categories/"+categoryID, nil, token)
	require.Equal(t, http.StatusOK, rec.Code)

	// transaction survives with the reference gone
	rec = performRequest(r, http.MethodGet, base+"/transactions/"+txID, nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	tx := decode(t, rec)
	assert.Nil(t, tx["category_id"])
	amount, err := decimal.NewFromString(tx["amount"].(string))
	require.NoError(t, err)
	assert.True(t, amount.Equal(decimal.RequireFromString("42.00")), "amount %s", amount)
}

func TestGoalDeletePreservesTransactions(t *testing.T) {
	_, r := newTestApp(t)
	token := registerAndLogin(t, r, "a@example.com")
	tenantID := createTenant(t, r, token, "Home")
	workspaceID := createWorkspace(t, r, token, tenantID, "Trip")
	base := "/api/tenants/" + tenantID + "/workspaces/" + workspaceID

	rec := performRequest(r, http.MethodPost, base+"/goals",
		jsonBody(t, gin.H{"name": "Vacation", "target_amount": "1500.00"}), token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	goal := decode(t, rec)
	assert.Equal(t, "0", goal["current_amount"])
	goalID := goal["id"].(string)

	rec = performRequest(r, http.MethodPost, base+"/transactions",
		jsonBody(t, gin.H{"amount": "100.00", "type": "income", "goal_id": goalID}), token)
	require.Equal(t, http.StatusCreated, rec.Code)
	txID := decode(t, rec)["id"].(string)

	rec = performRequest(r, http.MethodDelete, base+"/goals/"+goalID, nil, token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = performRequest(r, http.MethodGet, base+"/transactions/"+txID, nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode(t, rec)["goal_id"])
}

func TestMonthlySummary(t *testing.T) {
	_, r := newTestApp(t)
	token := registerAndLogin(t, r, "a@example.com")
	tenantID := createTenant(t, r, token, "Home")
	workspaceID := createWorkspace(t, r, token, tenantID, "Trip")
	base := "/api/tenants/" + tenantID + "/workspaces/" + workspaceID

	for _, tx := range []gin.H{
		{"amount": "100.50", "type": "income", "date": "2025-03-05"},
		{"amount": "40.25", "type": "expense", "date": "2025-03-10"},
		{"amount": "999.99", "type": "expense", "date": "2025-04-01"}, // other month
	} {
		rec := performRequest(r, http.MethodPost, base+"/transactions", jsonBody(t, tx), token)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := performRequest(r, http.MethodGet, base+"/summary?month=2025-03", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode(t, rec)
	assert.Equal(t, "100.50", summary["total_income"])
	assert.Equal(t, "40.25", summary["total_expense"])
	assert.Equal(t, "60.25", summary["balance"])
}

func TestTransactionPartialUpdate(t *testing.T) {
	_, r := newTestApp(t)
	token := registerAndLogin(t, r, "a@example.com")
	tenantID := createTenant(t, r, token, "Home")
	workspaceID := createWorkspace(t, r, token, tenantID, "Trip")
	base := "/api/tenants/" + tenantID + "/workspaces/" + workspaceID

	rec := performRequest(r, http.MethodGet, base+"/categories", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	categoryID := decodeList(t, rec)[0]["id"].(string)

	rec = performRequest(r, http.MethodPost, base+"/transactions",
		jsonBody(t, gin.H{"amount": "10.00", "type": "expense", "category_id": categoryID}), token)
	require.Equal(t, http.StatusCreated, rec.Code)
	txID := decode(t, rec)["id"].(string)
	path := base + "/transactions/" + txID

	// a patch naming only the description leaves everything else alone
	rec = performRequest(r, http.MethodPatch, path,
		jsonBody(t, gin.H{"description": "coffee"}), token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = performRequest(r, http.MethodGet, path, nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	tx := decode(t, rec)
	assert.Equal(t, "coffee", tx["description"])
	assert.Equal(t, categoryID, tx["category_id"], "untouched reference must survive a patch")
	assert.Equal(t, "expense", tx["type"])
	amount, err := decimal.NewFromString(tx["amount"].(string))
	require.NoError(t, err)
	assert.True(t, amount.Equal(decimal.RequireFromString("10.00")), "amount %s", amount)

	// patching the amount alone keeps the description
	rec = performRequest(r, http.MethodPatch, path, jsonBody(t, gin.H{"amount": "9.99"}), token)
	require.Equal(t, http.StatusOK, rec.Code)
	tx = decode(t, rec)
	assert.Equal(t, "9.99", tx["amount"])
	assert.Equal(t, "coffee", tx["description"])
	assert.Equal(t, categoryID, tx["category_id"])

	// an explicit null unlinks the category
	rec = performRequest(r, http.MethodPatch, path, jsonBody(t, gin.H{"category_id": nil}), token)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = performRequest(r, http.MethodGet, path, nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode(t, rec)["category_id"])

	// invalid values are still rejected
	rec = performRequest(r, http.MethodPatch, path, jsonBody(t, gin.H{"amount": "1.234"}), token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = performRequest(r, http.MethodPatch, path, jsonBody(t, gin.H{"type": "transfer"}), token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGoalPartialUpdate(t *testing.T) {
	_, r := newTestApp(t)
	token := registerAndLogin(t, r, "a@example.com")
	tenantID := createTenant(t, r, token, "Home")
	workspaceID := createWorkspace(t, r, token, tenantID, "Trip")
	base := "/api/tenants/" + tenantID + "/workspaces/" + workspaceID

	rec := performRequest(r, http.MethodPost, base+"/goals",
		jsonBody(t, gin.H{"name": "Vacation", "target_amount": "1500.00"}), token)
	require.Equal(t, http.StatusCreated, rec.Code)
	goalID := decode(t, rec)["id"].(string)

	rec = performRequest(r, http.MethodPatch, base+"/goals/"+goalID,
		jsonBody(t, gin.H{"current_amount": "50.00"}), token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	goal := decode(t, rec)
	assert.Equal(t, "Vacation", goal["name"])
	target, err := decimal.NewFromString(goal["target_amount"].(string))
	require.NoError(t, err)
	assert.True(t, target.Equal(decimal.RequireFromString("1500.00")), "target %s", target)
	current, err := decimal.NewFromString(goal["current_amount"].(string))
	require.NoError(t, err)
	assert.True(t, current.Equal(decimal.RequireFromString("50.00")), "current %s", current)

	// empty patch is a no-op
	rec = performRequest(r, http.MethodPatch, base+"/goals/"+goalID, jsonBody(t, gin.H{}), token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Vacation", decode(t, rec)["name"])
}

func TestTenantPartialUpdate(t *testing.T) {
	_, r := newTestApp(t)
	token := registerAndLogin(t, r, "a@example.com")
	tenantID := createTenant(t, r, token, "Home")

	rec := performRequest(r, http.MethodPatch, "/api/tenants/"+tenantID, jsonBody(t, gin.H{}), token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Home", decode(t, rec)["name"])

	rec = performRequest(r, http.MethodPatch, "/api/tenants/"+tenantID,
		jsonBody(t, gin.H{"name": "Renamed"}), token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Renamed", decode(t, rec)["name"])
}

func TestReceiptUpload(t *testing.T) {
	_, r := newTestApp(t)
	token := registerAndLogin(t, r, "a@example.com")
	tenantID := createTenant(t, r, token, "Home")
	workspaceID := createWorkspace(t, r, token, tenantID, "Trip")
	base := "/api/tenants/" + tenantID + "/workspaces/" + workspaceID

	rec := performRequest(r, http.MethodPost, base+"/transactions",
		jsonBody(t, gin.H{"amount": "12.00", "type": "expense"}), token)
	require.Equal(t, http.StatusCreated, rec.Code)
	txID := decode(t, rec)["id"].(string)
	path := base + "/transactions/" + txID + "/receipt"

	// nothing attached yet
	rec = performRequest(r, http.MethodGet, path, nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	body, contentType := receiptForm(t, "receipt.png")
	rec = performUpload(r, path, body, contentType, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	attachment := decode(t, rec)
	attachmentID := attachment["id"].(string)
	assert.Equal(t, "receipt.png", attachment["file_name"])
	assert.NotEmpty(t, attachment["thumb_path"], "thumbnail expected for a valid image")

	// one receipt per transaction: the second upload returns the first record
	body, contentType = receiptForm(t, "other.png")
	rec = performUpload(r, path, body, contentType, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, attachmentID, decode(t, rec)["id"])

	rec = performRequest(r, http.MethodGet, path, nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, attachmentID, decode(t, rec)["id"])

	// a non-image payload is rejected and leaves nothing behind
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("not an image"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	rec = performRequest(r, http.MethodPost, base+"/transactions",
		jsonBody(t, gin.H{"amount": "3.00", "type": "expense"}), token)
	require.Equal(t, http.StatusCreated, rec.Code)
	otherTx := decode(t, rec)["id"].(string)
	rec = performUpload(r, base+"/transactions/"+otherTx+"/receipt", &buf, w.FormDataContentType(), token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = performRequest(r, http.MethodGet, base+"/transactions/"+otherTx+"/receipt", nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTenantCascadeDelete(t *testing.T) {
	app, r := newTestApp(t)
	token := registerAndLogin(t, r, "a@example.com")
	tenantID := createTenant(t, r, token, "Home")
	workspaceID := createWorkspace(t, r, token, tenantID, "Trip")

	rec := performRequest(r, http.MethodDelete, "/api/tenants/"+tenantID, nil, token)
	require.Equal(t, http.StatusOK, rec.Code)

	var n int64
	require.NoError(t, app.db.Model(&models.Workspace{}).Where("id = ?", workspaceID).Count(&n).Error)
	assert.EqualValues(t, 0, n, "workspace must be gone")

	for what, model := range map[string]interface{}{
		"categories":  &models.Category{},
		"memberships": &models.WorkspaceMembership{},
	} {
		require.NoError(t, app.db.Model(model).Where("workspace_id = ?", workspaceID).Count(&n).Error)
		assert.EqualValues(t, 0, n, fmt.Sprintf("%s must be gone", what))
	}
}
