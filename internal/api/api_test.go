package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/findmate/internal/auth"
	"github.com/erazemk/findmate/internal/db"
	"github.com/erazemk/findmate/internal/lifecycle"
	"github.com/erazemk/findmate/internal/mail"
	"github.com/erazemk/findmate/internal/model"
	"github.com/erazemk/findmate/internal/store"
)

const testJWTSecret = "test-secret"

type discardOutbox struct{}

func (discardOutbox) Submit(context.Context, mail.Message) error { return nil }

type testServer struct {
	*httptest.Server
	store *store.Store
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	s := store.New(db.NewTestDB(t))
	engine := lifecycle.New(s, lifecycle.Options{Outbox: discardOutbox{}, BcryptCost: bcrypt.MinCost})
	router := NewRouter(&Handler{
		Engine:   engine,
		Sessions: &auth.Sessions{Secret: testJWTSecret, TTL: time.Hour, Revoked: s, Users: s},
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	for _, u := range []struct{ name, email, role string }{
		{"Admin", "admin@campus.edu", model.RoleAdmin},
		{"Alice", "alice@campus.edu", model.RoleUser},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
		require.NoError(t, err)
		_, err = s.CreateUser(context.Background(), model.User{
			FullName: u.name, Email: u.email, PasswordHash: string(hash), Role: u.role, Verified: true,
			CreatedAt: time.Now(),
		})
		require.NoError(t, err)
	}
	return &testServer{Server: server, store: s}
}

func (ts *testServer) login(t *testing.T, email string) string {
	t.Helper()
	resp := ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": "password123"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body loginResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body.Token)
	return body.Token
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, ts.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func status(t *testing.T, resp *http.Response) int {
	t.Helper()
	resp.Body.Close()
	return resp.StatusCode
}

func lostReport() map[string]string {
	return map[string]string{
		"item_name":   "Blue Backpack",
		"category":    "bags",
		"description": "Navy with a keychain",
		"location":    "Library",
		"date":        "2026-03-14",
	}
}

func TestLoginEndpoint(t *testing.T) {
	ts := setupTestServer(t)

	assert.Equal(t, http.StatusUnauthorized, status(t, ts.do(t, http.MethodPost, "/api/auth/login", "",
		map[string]string{"email": "admin@campus.edu", "password": "wrong"})))
	assert.Equal(t, http.StatusBadRequest, status(t, ts.do(t, http.MethodPost, "/api/auth/login", "",
		map[string]string{"email": "admin@campus.edu"})))

	ts.login(t, "admin@campus.edu")
}

func TestSignupThenLoginRequiresVerification(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.do(t, http.MethodPost, "/api/auth/signup", "", map[string]any{
		"full_name":        "Bob",
		"email":            "bob@campus.edu",
		"password":         "long enough",
		"confirm_password": "long enough",
		"accept_terms":     true,
	})
	assert.Equal(t, http.StatusCreated, status(t, resp))

	assert.Equal(t, http.StatusForbidden, status(t, ts.do(t, http.MethodPost, "/api/auth/login", "",
		map[string]string{"email": "bob@campus.edu", "password": "long enough"})))

	resp = ts.do(t, http.MethodPost, "/api/auth/signup", "", map[string]any{
		"full_name":        "Bob",
		"email":            "bob@campus.edu",
		"password":         "long enough",
		"confirm_password": "long enough",
		"accept_terms":     true,
	})
	assert.Equal(t, http.StatusConflict, status(t, resp))
}

func TestSubmitAndListReports(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.login(t, "alice@campus.edu")

	assert.Equal(t, http.StatusUnauthorized, status(t, ts.do(t, http.MethodPost, "/api/reports/lost", "", lostReport())))

	bad := lostReport()
	delete(bad, "description")
	resp := ts.do(t, http.MethodPost, "/api/reports/lost", token, bad)
	var errBody errorBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errBody))
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "description", errBody.Field)

	resp = ts.do(t, http.MethodPost, "/api/reports/lost", token, lostReport())
	var created model.LostReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, model.ZoneLibrary, created.LostLocation)

	resp = ts.do(t, http.MethodGet, "/api/reports/lost?search=backpack&category=bags&date=today", "", nil)
	var listed []model.LostReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
	resp.Body.Close()
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)

	assert.Equal(t, http.StatusBadRequest, status(t, ts.do(t, http.MethodGet, "/api/reports/lost?date=decade", "", nil)))
	assert.Equal(t, http.StatusNotFound, status(t, ts.do(t, http.MethodGet, "/api/reports/stolen", "", nil)))
}

func TestAdminResolveFlow(t *testing.T) {
	ts := setupTestServer(t)
	userToken := ts.login(t, "alice@campus.edu")
	adminToken := ts.login(t, "admin@campus.edu")

	resp := ts.do(t, http.MethodPost, "/api/reports/lost", userToken, lostReport())
	var created model.LostReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()

	path := "/api/admin/reports/lost/" + created.ID + "/resolve"
	assert.Equal(t, http.StatusUnauthorized, status(t, ts.do(t, http.MethodPost, path, "", nil)))
	assert.Equal(t, http.StatusForbidden, status(t, ts.do(t, http.MethodPost, path, userToken, nil)))

	resp = ts.do(t, http.MethodPost, path, adminToken, nil)
	var rec model.ReunitedRecord
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rec))
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Blue Backpack", rec.ItemName)
	assert.Equal(t, created.ID, rec.SourceID)

	assert.Equal(t, http.StatusNotFound, status(t, ts.do(t, http.MethodPost, path, adminToken, nil)))

	resp = ts.do(t, http.MethodGet, "/api/admin/reunited", adminToken, nil)
	var records []model.ReunitedRecord
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&records))
	resp.Body.Close()
	assert.Len(t, records, 1)

	resp = ts.do(t, http.MethodGet, "/api/admin/dashboard", adminToken, nil)
	var dash map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&dash))
	resp.Body.Close()
	assert.Contains(t, dash, "users")
	assert.Contains(t, dash, "lostItems")
	assert.Contains(t, dash, "foundItems")
	assert.Contains(t, dash, "reunitedItems")
}

func TestAdminDiscardAndDeleteUser(t *testing.T) {
	ts := setupTestServer(t)
	userToken := ts.login(t, "alice@campus.edu")
	adminToken := ts.login(t, "admin@campus.edu")

	resp := ts.do(t, http.MethodPost, "/api/reports/lost", userToken, lostReport())
	var created model.LostReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()

	path := "/api/admin/reports/lost/" + created.ID
	assert.Equal(t, http.StatusForbidden, status(t, ts.do(t, http.MethodDelete, path, userToken, nil)))
	assert.Equal(t, http.StatusNoContent, status(t, ts.do(t, http.MethodDelete, path, adminToken, nil)))
	assert.Equal(t, http.StatusNotFound, status(t, ts.do(t, http.MethodDelete, path, adminToken, nil)))

	alice, err := ts.store.GetUserByEmail(context.Background(), "alice@campus.edu")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, status(t, ts.do(t, http.MethodDelete, "/api/admin/users/abc", adminToken, nil)))
	assert.Equal(t, http.StatusNoContent, status(t, ts.do(t, http.MethodDelete, "/api/admin/users/"+strconv.FormatInt(alice.ID, 10), adminToken, nil)))
	assert.Equal(t, http.StatusUnauthorized, status(t, ts.do(t, http.MethodPost, "/api/auth/login", "",
		map[string]string{"email": "alice@campus.edu", "password": "password123"})))
}

func TestDeletedAccountTokenRejected(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	admin2, err := ts.store.CreateUser(ctx, model.User{
		FullName: "Admin Two", Email: "admin2@campus.edu", PasswordHash: string(hash),
		Role: model.RoleAdmin, Verified: true, CreatedAt: time.Now(),
	})
	require.NoError(t, err)
	alice, err := ts.store.GetUserByEmail(ctx, "alice@campus.edu")
	require.NoError(t, err)

	aliceToken := ts.login(t, "alice@campus.edu")
	admin2Token := ts.login(t, "admin2@campus.edu")
	adminToken := ts.login(t, "admin@campus.edu")

	resp := ts.do(t, http.MethodPost, "/api/reports/lost", adminToken, lostReport())
	var created model.LostReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()

	for _, id := range []int64{alice.ID, admin2.ID} {
		assert.Equal(t, http.StatusNoContent, status(t, ts.do(t, http.MethodDelete,
			"/api/admin/users/"+strconv.FormatInt(id, 10), adminToken, nil)))
	}

	assert.Equal(t, http.StatusUnauthorized, status(t, ts.do(t, http.MethodPost, "/api/reports/lost", aliceToken, lostReport())))
	path := "/api/admin/reports/lost/" + created.ID + "/resolve"
	assert.Equal(t, http.StatusUnauthorized, status(t, ts.do(t, http.MethodPost, path, admin2Token, nil)))
	assert.Equal(t, http.StatusOK, status(t, ts.do(t, http.MethodPost, path, adminToken, nil)))
}

func TestLogoutRevokesToken(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.login(t, "alice@campus.edu")

	assert.Equal(t, http.StatusUnauthorized, status(t, ts.do(t, http.MethodPost, "/api/auth/logout", "", nil)))
	assert.Equal(t, http.StatusOK, status(t, ts.do(t, http.MethodPost, "/api/auth/logout", token, nil)))
	assert.Equal(t, http.StatusUnauthorized, status(t, ts.do(t, http.MethodPost, "/api/reports/lost", token, lostReport())))
}

func TestChangePassword(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.login(t, "alice@campus.edu")

	assert.Equal(t, http.StatusUnauthorized, status(t, ts.do(t, http.MethodPut, "/api/auth/password", token,
		map[string]string{"current_password": "nope", "new_password": "brand new pw"})))
	assert.Equal(t, http.StatusOK, status(t, ts.do(t, http.MethodPut, "/api/auth/password", token,
		map[string]string{"current_password": "password123", "new_password": "brand new pw"})))
	assert.Equal(t, http.StatusOK, status(t, ts.do(t, http.MethodPost, "/api/auth/login", "",
		map[string]string{"email": "alice@campus.edu", "password": "brand new pw"})))
}

func TestInvalidBearerToken(t *testing.T) {
	ts := setupTestServer(t)
	assert.Equal(t, http.StatusUnauthorized, status(t, ts.do(t, http.MethodGet, "/api/reports/lost", "garbage", nil)))

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/stats", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Basic abc")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, status(t, resp))
}

func TestStats(t *testing.T) {
	ts := setupTestServer(t)
	resp := ts.do(t, http.MethodGet, "/api/stats", "", nil)
	var stats lifecycle.Stats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	resp.Body.Close()
	assert.Equal(t, 2, stats.HappyUsers)
}
