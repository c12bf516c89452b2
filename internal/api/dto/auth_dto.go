package dto

import "github.com/spec-kit/accounts-service/internal/domain"

// LoginRequest accepts either a JSON body or an OAuth2 password form; username carries the email.
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required,max=72"`
}

// RefreshTokenRequest payload for exchanging a refresh token.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenResponse is returned by login and refresh.
type TokenResponse struct {
	TokenType             string `json:"token_type"`
	AccessToken           string `json:"access_token"`
	ExpiresAt             int64  `json:"expires_at"`
	RefreshToken          string `json:"refresh_token"`
	RefreshTokenExpiresAt int64  `json:"refresh_token_expires_at"`
}

// NewTokenResponse maps a token pair.
func NewTokenResponse(pair *domain.TokenPair) TokenResponse {
	return TokenResponse{
		TokenType:             "bearer",
		AccessToken:           pair.AccessToken,
		ExpiresAt:             pair.AccessExpiresAt.Unix(),
		RefreshToken:          pair.RefreshToken,
		RefreshTokenExpiresAt: pair.RefreshExpiresAt.Unix(),
	}
}
