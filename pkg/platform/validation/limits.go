// Package validation holds the request size limits shared by the HTTP layer and config.
package validation

// HTTP body limits
const (
	// MaxBodySize caps JSON request bodies (64 KB).
	MaxBodySize = 64 * 1024

	// MaxImageBytes is the largest accepted link image (5 MB).
	MaxImageBytes = 5 * 1024 * 1024

	// MaxMultipartOverhead is headroom for form fields and multipart framing
	// on top of the image itself.
	MaxMultipartOverhead = 64 * 1024
)
