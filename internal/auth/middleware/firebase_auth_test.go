package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	authctx "github.com/connecta/collabo-backend/internal/auth"
)

type stubVerifier map[string]*auth.Token

func (s stubVerifier) VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error) {
	if tok, ok := s[idToken]; ok {
		return tok, nil
	}
	return nil, errors.New("token expired")
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	verifier := stubVerifier{
		"good": {UID: "uid-1", Claims: map[string]interface{}{"email": "ada@example.com"}},
	}
	r := gin.New()
	r.Use(FirebaseAuthMiddleware(verifier))
	r.GET("/me", func(c *gin.Context) {
		c.String(http.StatusOK, authctx.UserFirebaseUID(c)+"|"+c.GetString(authctx.CtxEmail))
	})
	return r
}

func TestFirebaseAuthMiddleware(t *testing.T) {
	tests := []struct {
		name   string
		header string
		query  string
		status int
		body   string
	}{
		{name: "bearer token", header: "Bearer good", status: http.StatusOK, body: "uid-1|ada@example.com"},
		{name: "query token", query: "?access_token=good", status: http.StatusOK, body: "uid-1|ada@example.com"},
		{name: "missing token", status: http.StatusUnauthorized},
		{name: "invalid token", header: "Bearer bad", status: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic good", status: http.StatusUnauthorized},
	}

	r := newRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			assert.Equal(t, tt.status, rr.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rr.Body.String())
			}
		})
	}
}
