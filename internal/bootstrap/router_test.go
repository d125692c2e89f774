package bootstrap

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/connecta/collabo-backend/config"
	"github.com/connecta/collabo-backend/internal/auth"
	"github.com/connecta/collabo-backend/internal/collabo/collabotest"
	collabohttp "github.com/connecta/collabo-backend/internal/collabo/http"
	"github.com/connecta/collabo-backend/internal/collabo/service"
	"github.com/connecta/collabo-backend/internal/users"
)

type mapEnsurer struct{ seen []users.UpsertUser }

func (m *mapEnsurer) EnsureUser(ctx context.Context, u users.UpsertUser) (string, error) {
	m.seen = append(m.seen, u)
	return u.FirebaseUID, nil
}

func testRouter(t *testing.T) (*gin.Engine, *mapEnsurer, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := collabotest.NewStore(true)
	events := &collabotest.Events{}
	ensurer := &mapEnsurer{}
	dir := t.TempDir()

	r := BuildRouter(RouterDeps{
		ServiceName:  "collabo-backend",
		Version:      "test",
		CORSOrigins:  []string{"http://localhost:3000"},
		Authenticate: auth.DevUser(),
		Users:        ensurer,
		Collabo: collabohttp.New(collabohttp.Deps{
			Projects:   service.NewProjectService(store, nil, &collabotest.Gateway{}, events, config.CollaboConfig{DurabilityMode: config.DurabilityStrict, InviteLimit: 5}, "NGN"),
			Matcher:    service.NewMatcher(store, 5),
			Workspaces: service.NewWorkspaceService(store, events, false),
		}),
		UploadDir: dir,
	})
	return r, ensurer, dir
}

func TestBuildRouter_Health(t *testing.T) {
	r, _, _ := testRouter(t)

	for _, path := range []string{"/health", "/healthz"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, w.Code, path)

		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "healthy", body["status"])
		assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
	}
}

func TestBuildRouter_RequiresUser(t *testing.T) {
	r, ensurer, _ := testRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/collabo/my-projects", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, ensurer.seen)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/collabo/my-projects", nil)
	req.Header.Set("X-User-Id", "client-1")
	req.Header.Set("X-User-Email", "client@example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, ensurer.seen, 1)
	assert.Equal(t, "client@example.com", ensurer.seen[0].Email)
}

func TestBuildRouter_CORSPreflight(t *testing.T) {
	r, _, _ := testRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/collabo/create", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestBuildRouter_ServesUploads(t *testing.T) {
	r, _, dir := testRouter(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "ws-1"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ws-1", "brief.txt"), []byte("brief"), 0o644))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/uploads/ws-1/brief.txt", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "brief", w.Body.String())
}
