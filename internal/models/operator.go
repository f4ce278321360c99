package models

import "time"

// Operator is a user of the management API. Operators authenticate with
// username and password and receive a JWT for subsequent requests.
type Operator struct {
	UID          string
	Username     string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}
