package model

import "time"

// User is a registered account. Identity comes from GitHub OAuth, so the
// stable external key is the numeric GitHub user ID; we still mint our own
// xid so primary keys are not tied to a third party's numbering.
//
// Email may be empty when the user hides it in their GitHub settings.
type User struct {
	ID        string    `json:"id"`
	GitHubID  int64     `json:"githubId"`
	Login     string    `json:"login"`
	Email     string    `json:"email"`
	AvatarURL string    `json:"avatarUrl"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
