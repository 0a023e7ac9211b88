// Package domain contains entities without logic, just meta-data.
package domain

const (
	MaxUserIDLen = 64
	MaxNameLen   = 64
)

// User is what a JOIN asserts about a connection. Ephemeral: it lives
// exactly as long as some connection claims it, and is never persisted.
type User struct {
	ID   string `json:"userId"`
	Name string `json:"name"`
}
