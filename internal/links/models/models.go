package models

import (
	"time"

	redirect "shortlink/internal/redirect/models"
)

// Link is a stored short link owned by one user.
type Link struct {
	ID         string
	ImagePath  string // public path, e.g. /uploads/<uuid>.png
	URLMobile  string
	URLDesktop string // optional
	Username   string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// OwnedBy reports whether username created the link.
func (l *Link) OwnedBy(username string) bool {
	return l.Username == username
}

// Record is the read-only view handed to the redirect resolver.
func (l *Link) Record() *redirect.LinkRecord {
	return &redirect.LinkRecord{
		ID:         l.ID,
		ImageRef:   l.ImagePath,
		URLMobile:  l.URLMobile,
		URLDesktop: l.URLDesktop,
	}
}
