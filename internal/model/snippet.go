// Package model defines the data structures shared across the application
// layers. Structs here carry json tags for the API surface and know nothing
// about HTTP or SQL.
package model

import "time"

// Snippet is a saved piece of JavaScript source. UserID is empty for
// snippets created before authentication was enabled (legacy anonymous
// rows); new snippets always belong to a user.
type Snippet struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId,omitempty"`
	Name        string    `json:"name"`
	Source      string    `json:"source"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
