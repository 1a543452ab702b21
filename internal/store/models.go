package store

import "time"

// User is a registered identity. Identity is immutable once created.
type User struct {
	ID             int64
	Email          string
	HashedPassword string
	FullName       *string
	IsActive       bool
	CreatedAt      time.Time
}

// Event is a time-bounded entry owned by exactly one user. Start/end form a
// half-open interval [StartTime, EndTime) and are stored UTC-normalized.
type Event struct {
	ID          int64
	Title       string
	Description *string
	StartTime   time.Time
	EndTime     time.Time
	Location    *string
	OwnerID     int64
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// Permission is a lazily created entry in the global permission vocabulary.
type Permission struct {
	ID          int64
	Name        string
	Description *string
}

// PermissionGrant ties one permission name to one (event, user) pair.
type PermissionGrant struct {
	ID             int64
	EventID        int64
	UserID         int64
	PermissionID   int64
	PermissionName string
}
