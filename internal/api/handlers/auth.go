package handlers

import (
	"context"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	username     string
	passwordHash []byte
	jwtSecret    string
	jwtExpiry    time.Duration
}

func NewAuthHandler(username, password, jwtSecret string, jwtExpiry time.Duration) (*AuthHandler, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &AuthHandler{
		username:     username,
		passwordHash: hash,
		jwtSecret:    jwtSecret,
		jwtExpiry:    jwtExpiry,
	}, nil
}

type LoginInput struct {
	Body struct {
		Username string `json:"username" minLength:"1" doc:"Admin username"`
		Password string `json:"password" minLength:"1" doc:"Admin password"`
	}
}

type TokenDTO struct {
	Token     string    `json:"token" doc:"JWT bearer token"`
	ExpiresAt time.Time `json:"expires_at" doc:"Token expiry time"`
}

func (h *AuthHandler) Login(_ context.Context, input *LoginInput) (*DataOutput[TokenDTO], error) {
	if input.Body.Username != h.username ||
		bcrypt.CompareHashAndPassword(h.passwordHash, []byte(input.Body.Password)) != nil {
		return nil, huma.Error401Unauthorized("invalid credentials")
	}

	expiresAt := time.Now().Add(h.jwtExpiry)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  h.username,
		"role": "admin",
		"exp":  expiresAt.Unix(),
	})
	signed, err := token.SignedString([]byte(h.jwtSecret))
	if err != nil {
		return nil, huma.Error500InternalServerError("sign token: " + err.Error())
	}

	return OK(TokenDTO{Token: signed, ExpiresAt: expiresAt}), nil
}
