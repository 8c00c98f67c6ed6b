package organizations

import "time"

// Organization is a tenant of the ledger. SIREN is the 9-digit INSEE
// business identifier stamped on regulatory exports.
type Organization struct {
	ID        int64
	Name      string
	SIREN     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
