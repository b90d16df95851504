package models

import "time"

// NewsDocument is one candidate article produced by the search stage. It is
// consumed by the analysis stage and discarded afterwards.
type NewsDocument struct {
	Title       string    `json:"title"`
	Source      string    `json:"source"`
	URL         string    `json:"url"`
	Snippet     string    `json:"snippet"`
	PublishedAt time.Time `json:"published_at,omitempty"`
}
