package domain

import "time"

// PresignedLink grants its bearer one update of one user's record.
// Used only ever goes false -> true; expiry is computed at read time.
type PresignedLink struct {
	Id        LinkId
	Slug      Slug
	UserId    UserId
	ExpiresAt time.Time
	Used      bool
}

// ValidAt reports whether the link can still be used at the given instant.
func (l PresignedLink) ValidAt(now time.Time) bool {
	return !l.Used && now.Before(l.ExpiresAt)
}
