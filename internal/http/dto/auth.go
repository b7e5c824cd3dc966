// Package dto define los requests y responses JSON de la API.
package dto

import "time"

type LoginRequest struct {
	Email          string `json:"email" validate:"required,email,max=254"`
	Password       string `json:"password" validate:"required,max=1024"`
	OrganizationID string `json:"organization_id,omitempty" validate:"omitempty,max=64"`
}

type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int64        `json:"expires_in"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        UserResponse `json:"user"`
}

type RefreshRequest struct {
	AccessToken string `json:"access_token" validate:"required"`
}

type RefreshResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
