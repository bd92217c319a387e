package domain

import "time"

// Project represents one knowledge-base project within a team
type Project struct {
	ID        string    `json:"id"`
	TeamID    string    `json:"team_id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

// Team represents the billing/ownership unit above projects
type Team struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`

	// TokenAllowance is the team's indexed-content quota, in tokens
	TokenAllowance int64 `json:"token_allowance"`

	CreatedAt time.Time `json:"created_at"`
}

// UsageStats is the usage/quota snapshot surfaced in the dashboard
type UsageStats struct {
	TeamID string `json:"team_id"`

	// NumFiles is the total number of indexed files across the team
	NumFiles int `json:"num_files"`

	// NumTokens is the total token count of processed files
	NumTokens int64 `json:"num_tokens"`

	// TokenAllowance mirrors the team quota for upsell messaging
	TokenAllowance int64 `json:"token_allowance"`
}

// CanAddMoreContent reports whether the team is under its quota
func (u *UsageStats) CanAddMoreContent() bool {
	if u.TokenAllowance <= 0 {
		return true
	}
	return u.NumTokens < u.TokenAllowance
}
