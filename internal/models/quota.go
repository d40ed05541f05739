package models

import "time"

// UserQuota tracks per-user request usage within a daily window.
// WindowStart is truncated to midnight UTC; the scheduler's reset job and
// the lazy rollover in the quota service both key off it.
type UserQuota struct {
	UserID      string `badgerhold:"key"`
	Used        int
	Limit       int
	WindowStart time.Time
	UpdatedAt   time.Time
}

// Exhausted reports whether the user has no requests left in the window.
func (q UserQuota) Exhausted() bool {
	return q.Limit > 0 && q.Used >= q.Limit
}
