package fiscalyears

import "time"

// FiscalYear represents an accounting exercise window.
type FiscalYear struct {
	ID        int64
	OrgID     int64
	Label     string
	StartDate time.Time
	EndDate   time.Time
	IsClosed  bool
	ClosedAt  *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Covers reports whether the date falls inside the fiscal year window.
func (fy FiscalYear) Covers(date time.Time) bool {
	return !date.Before(fy.StartDate) && !date.After(fy.EndDate)
}
