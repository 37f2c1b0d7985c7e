package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/ARQAP/archive-backend/src/logging"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// UserIDKey is the gin context key the authenticated user id is stored under.
const UserIDKey = "userId"

var secretKey string

func SetSecretKey(key string) {
	secretKey = key
}

func GetSecretKey() string {
	return secretKey
}

// AdminChecker reports whether a user holds the admin flag.
type AdminChecker interface {
	IsAdmin(ctx context.Context, id int) (bool, error)
}

func unauthorized(ctx *gin.Context, msg string) {
	ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}

func AuthMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		// Gets the authorization header
		authHeader := strings.TrimSpace(ctx.GetHeader("Authorization"))
		if authHeader == "" {
			unauthorized(ctx, "Authorization header is required")
			return
		}

		// Divides the header into Bearer and Token
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || parts[0] != "Bearer" {
			unauthorized(ctx, "Invalid authorization format")
			return
		}

		// Verifies the signature and expiry
		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			return []byte(secretKey), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
		if err != nil || !token.Valid {
			unauthorized(ctx, "Invalid token")
			return
		}

		// JSON numbers decode as float64
		id, ok := claims["id"].(float64)
		if !ok || id <= 0 {
			unauthorized(ctx, "Invalid token")
			return
		}

		ctx.Set(UserIDKey, int(id))
		ctx.Next()
	}
}

// RequireAdmin lets the request through only for users holding the admin
// flag. It must run after AuthMiddleware.
func RequireAdmin(users AdminChecker) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id, ok := UserID(ctx)
		if !ok {
			unauthorized(ctx, "Authorization header is required")
			return
		}
		admin, err := users.IsAdmin(ctx.Request.Context(), id)
		if err != nil {
			logging.Error().Err(err).Int("user", id).Msg("admin lookup failed")
			ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "unable to verify authorization"})
			return
		}
		if !admin {
			unauthorized(ctx, "insufficient authorization")
			return
		}
		ctx.Next()
	}
}

// UserID returns the id AuthMiddleware stored on the context.
func UserID(ctx *gin.Context) (int, bool) {
	v, ok := ctx.Get(UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int)
	return id, ok
}
