package domain

import (
	"crypto/rand"
	"encoding/base64"
	"time"
)

// Token is a project-scoped API token. The value is stored encrypted
// and returned decrypted on listing.
type Token struct {
	ID         string    `json:"id"`
	ProjectID  string    `json:"project_id"`
	Value      string    `json:"value"`
	CreatedBy  string    `json:"created_by"`
	InsertedAt time.Time `json:"inserted_at"`
}

// GenerateKey creates a new API token value
func GenerateKey() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return "sk_" + base64.RawURLEncoding.EncodeToString(b)
}
