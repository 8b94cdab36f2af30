package models

import "time"

type CreateLinkResponse struct {
	Link string `json:"link"`
}

type DeleteLinkResponse struct {
	Message string `json:"message"`
}

// LinkResponse is one entry of the list endpoint.
type LinkResponse struct {
	ID         string    `json:"id"`
	Image      string    `json:"image"`
	URLMobile  string    `json:"urlMobile"`
	URLDesktop string    `json:"urlDesktop,omitempty"`
	ShortURL   string    `json:"shortUrl"`
	CreatedAt  time.Time `json:"createdAt"`
}

type ListLinksResponse struct {
	Links []LinkResponse `json:"links"`
}

// ToResponse renders l with its public short URL under origin.
func ToResponse(l *Link, origin string) LinkResponse {
	return LinkResponse{
		ID:         l.ID,
		Image:      l.ImagePath,
		URLMobile:  l.URLMobile,
		URLDesktop: l.URLDesktop,
		ShortURL:   ShortURL(origin, l.ID),
		CreatedAt:  l.CreatedAt,
	}
}

// ShortURL joins origin and id without doubling the slash.
func ShortURL(origin, id string) string {
	for len(origin) > 0 && origin[len(origin)-1] == '/' {
		origin = origin[:len(origin)-1]
	}
	return origin + "/" + id
}
