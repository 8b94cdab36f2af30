package models

import (
	"strings"

	dErrors "shortlink/pkg/domain-errors"
	"shortlink/pkg/validation"
)

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50,notblank"`
	Password string `json:"password" validate:"required,min=6,max=100"`
}

func (r *RegisterRequest) Normalize() {
	if r == nil {
		return
	}
	r.Username = normalizeUsername(r.Username)
}

func (r *RegisterRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

type LoginRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required,max=100"`
}

func (r *LoginRequest) Normalize() {
	if r == nil {
		return
	}
	r.Username = normalizeUsername(r.Username)
}

func (r *LoginRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

func normalizeUsername(u string) string {
	return strings.ToLower(strings.TrimSpace(u))
}
