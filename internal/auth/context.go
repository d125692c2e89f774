package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	CtxFirebaseUID = "firebase_uid"
	CtxEmail       = "email"
	CtxUserID      = "user_id"
)

// UserFirebaseUID extracts the Firebase UID from the Gin context.
// It is set by the Firebase middleware or, in development, by DevUser.
func UserFirebaseUID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxFirebaseUID))
}

// UserID is the id of the users row for the caller, set by WithUser.
func UserID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxUserID))
}
