package model

import "time"

// Fallbacks recorded for requests that never resolved to a user.
const (
	AnonymousFirstName = "Anonymous"
	AnonymousEmail     = "unknown@example.com"
)

type AccessLog struct {
	ID            int64     `json:"id"`
	UserID        *string   `json:"userId"` // nil for anonymous requests
	UserFirstName string    `json:"userFirstName"`
	UserEmail     string    `json:"userEmail"`
	URL           string    `json:"url"`
	Success       bool      `json:"success"`
	ErrorMessage  *string   `json:"errorMessage"`
	DurationMs    int64     `json:"duration"`
	CreatedAt     time.Time `json:"timestamp"`
}

// AccessLogPage is one page of the newest-first access log listing.
type AccessLogPage struct {
	CurrentPage int         `json:"currentPage"`
	TotalPages  int         `json:"totalPages"`
	Logs        []AccessLog `json:"logs"`
}
