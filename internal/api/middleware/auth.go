package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const (
	UserKey contextKey = "user"
	RoleKey contextKey = "role"
)

func GetUser(ctx context.Context) string {
	v, _ := ctx.Value(UserKey).(string)
	return v
}

func GetRole(ctx context.Context) string {
	v, _ := ctx.Value(RoleKey).(string)
	return v
}

// Auth validates a JWT bearer token and stores the subject and role on the
// request context.
func Auth(jwtSecret string) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		auth := ctx.Header("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			writeError(ctx, http.StatusUnauthorized, "authentication required")
			return
		}

		token, err := jwt.Parse(strings.TrimPrefix(auth, "Bearer "), func(t *jwt.Token) (any, error) {
			return []byte(jwtSecret), nil
		})
		if err != nil || !token.Valid {
			writeError(ctx, http.StatusUnauthorized, "invalid token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			writeError(ctx, http.StatusUnauthorized, "invalid claims")
			return
		}

		user, _ := claims["sub"].(string)
		role, _ := claims["role"].(string)

		echoCtx := humaecho.Unwrap(ctx)
		r := echoCtx.Request()
		newCtx := context.WithValue(r.Context(), UserKey, user)
		newCtx = context.WithValue(newCtx, RoleKey, role)
		echoCtx.SetRequest(r.WithContext(newCtx))

		next(ctx)
	}
}

// AdminOnly gates operations that expose stored failure details.
func AdminOnly() func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		echoCtx := humaecho.Unwrap(ctx)
		if GetRole(echoCtx.Request().Context()) != "admin" {
			writeError(ctx, http.StatusForbidden, "admin access required")
			return
		}
		next(ctx)
	}
}

func writeError(ctx huma.Context, status int, msg string) {
	ctx.SetStatus(status)
	ctx.SetHeader("Content-Type", "application/json")
	_ = json.NewEncoder(ctx.BodyWriter()).Encode(huma.ErrorModel{
		Title:  http.StatusText(status),
		Status: status,
		Detail: msg,
	})
}
