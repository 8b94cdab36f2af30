package models

import "shortlink/internal/redirect/device"

// LinkRecord is the stored link as seen by the resolver. It is read-only here.
type LinkRecord struct {
	ID         string
	ImageRef   string
	URLMobile  string
	URLDesktop string // optional
}

// Reason explains why a resolution was rejected.
type Reason string

const (
	ReasonNone               Reason = ""
	ReasonUnsafeOrInvalidURL Reason = "unsafe_or_invalid_url"
)

// Resolution is either a validated destination or a rejection, never both.
type Resolution struct {
	Destination string
	Device      device.Class
	Reason      Reason
}

func (r Resolution) Rejected() bool {
	return r.Reason != ReasonNone
}

// Outcome is the metrics and tracing label for a resolution.
func (r Resolution) Outcome() string {
	if r.Rejected() {
		return string(r.Reason)
	}
	return "resolved"
}

// State is the lifecycle of a displayed redirect.
type State int

const (
	Loading State = iota
	Displaying
	Navigating
	Cancelled
	Rejected
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Displaying:
		return "displaying"
	case Navigating:
		return "navigating"
	case Cancelled:
		return "cancelled"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == Navigating || s == Cancelled || s == Rejected
}

// ResolveResponse is the JSON body of the resolve endpoint.
type ResolveResponse struct {
	ID          string       `json:"id"`
	Destination string       `json:"destination"`
	Device      device.Class `json:"device"`
	DeviceName  string       `json:"device_name"`
}
