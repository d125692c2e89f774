package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/connecta/collabo-backend/internal/users"
)

type fakeEnsurer struct {
	got []users.UpsertUser
	err error
}

func (f *fakeEnsurer) EnsureUser(ctx context.Context, u users.UpsertUser) (string, error) {
	f.got = append(f.got, u)
	if f.err != nil {
		return "", f.err
	}
	return u.FirebaseUID, nil
}

func newRouter(repo UserEnsurer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(DevUser(), WithUser(repo))
	r.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": UserID(c), "firebase_uid": UserFirebaseUID(c)})
	})
	return r
}

func TestWithUser_EnsuresCaller(t *testing.T) {
	repo := &fakeEnsurer{}
	r := newRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("X-User-Id", "uid-42")
	req.Header.Set("X-User-Email", "dev@example.com")
	req.Header.Set("X-User-Name", "Dev")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"user_id":"uid-42","firebase_uid":"uid-42"}`, rr.Body.String())
	require.Len(t, repo.got, 1)
	assert.Equal(t, users.UpsertUser{FirebaseUID: "uid-42", Email: "dev@example.com", DisplayName: "Dev"}, repo.got[0])
}

func TestWithUser_RejectsAnonymous(t *testing.T) {
	repo := &fakeEnsurer{}
	r := newRouter(repo)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/whoami", nil))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Empty(t, repo.got)
}

func TestWithUser_EnsureFailure(t *testing.T) {
	r := newRouter(&fakeEnsurer{err: errors.New("db down")})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("X-User-Id", "uid-42")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "db down")
}
