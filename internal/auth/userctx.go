package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/connecta/collabo-backend/internal/logging"
	"github.com/connecta/collabo-backend/internal/users"
)

// UserEnsurer creates or refreshes the users row of an authenticated caller.
type UserEnsurer interface {
	EnsureUser(ctx context.Context, u users.UpsertUser) (string, error)
}

// DevUser trusts the X-User-Id header as the Firebase UID. Use this ONLY for
// development and tests, when no Firebase credentials are configured.
func DevUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if uid := strings.TrimSpace(c.GetHeader("X-User-Id")); uid != "" {
			c.Set(CtxFirebaseUID, uid)
		}
		if email := strings.TrimSpace(c.GetHeader("X-User-Email")); email != "" {
			c.Set(CtxEmail, email)
		}
		c.Next()
	}
}

// WithUser upserts the caller into users and stores its id under CtxUserID.
// It must run after the Firebase middleware or DevUser.
func WithUser(repo UserEnsurer) gin.HandlerFunc {
	return func(c *gin.Context) {
		fuid := UserFirebaseUID(c)
		if fuid == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "user not authenticated"})
			c.Abort()
			return
		}

		email := c.GetString(CtxEmail)
		if email == "" {
			email = c.GetHeader("X-User-Email")
		}

		uid, err := repo.EnsureUser(c.Request.Context(), users.UpsertUser{
			FirebaseUID: fuid,
			Email:       email,
			DisplayName: c.GetHeader("X-User-Name"),
			PhotoURL:    c.GetHeader("X-User-Photo"),
		})
		if err != nil {
			logging.FromContext(c.Request.Context()).Error("ensure user", zap.String("firebase_uid", fuid), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "ensure user: " + err.Error()})
			c.Abort()
			return
		}

		c.Set(CtxUserID, uid)
		c.Next()
	}
}
