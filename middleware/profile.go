package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cppla/momentum/utils"
)

// ContextProfileKey is the key used to store the validated profile id in Gin context.
const ContextProfileKey = "profile_id"

// ProfileRequired ensures the :profile path parameter is a UUID and stores its
// canonical form in the context.
func ProfileRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		raw := strings.TrimSpace(ctx.Param("profile"))
		if raw == "" {
			utils.Error(ctx, http.StatusBadRequest, 40001, "profile id missing")
			ctx.Abort()
			return
		}

		id, err := uuid.Parse(raw)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40002, "invalid profile id")
			ctx.Abort()
			return
		}

		ctx.Set(ContextProfileKey, id.String())
		ctx.Next()
	}
}

// ProfileID returns the profile id stored by ProfileRequired.
func ProfileID(ctx *gin.Context) (string, bool) {
	v, ok := ctx.Get(ContextProfileKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}
