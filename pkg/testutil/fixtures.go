package testutil

import (
	"time"

	authmodels "shortlink/internal/auth/models"
	linkmodels "shortlink/internal/links/models"
)

// FixedTime is a deterministic "now" for tests.
var FixedTime = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

// NewLink returns a mobile-only link owned by username with an image under /uploads/.
func NewLink(id, username string, createdAt time.Time) *linkmodels.Link {
	return &linkmodels.Link{
		ID:        id,
		ImagePath: "/uploads/" + id + ".png",
		URLMobile: "https://a.example/" + id,
		Username:  username,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

// NewUser returns a user with a placeholder hash. Use secrets.Hash when the
// password has to verify.
func NewUser(username string) *authmodels.User {
	return &authmodels.User{
		Username:     username,
		PasswordHash: "$2a$10$placeholderplaceholderplaceholderplaceholderpla",
		CreatedAt:    FixedTime,
	}
}
