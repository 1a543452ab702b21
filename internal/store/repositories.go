package store

import (
	"context"

	"github.com/example/eventd/internal/schedule"
)

// UserRepository defines persistence operations for identities.
type UserRepository interface {
	Create(ctx context.Context, email, hashedPassword string, fullName *string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
}

// EventRepository handles event lifecycle. Create and Update run their
// conflict check and write inside a single transaction serialized per owner,
// so concurrent writers cannot both pass the check and commit overlapping
// events.
type EventRepository interface {
	Create(ctx context.Context, ev Event) (*Event, error)
	GetOwned(ctx context.Context, id, ownerID int64) (*Event, error)
	ListByOwner(ctx context.Context, ownerID int64, skip, limit int) ([]Event, error)
	Update(ctx context.Context, id, ownerID int64, patch schedule.EventPatch) (*Event, error)
	Delete(ctx context.Context, id, ownerID int64) error
}

// GrantRepository manages the permission vocabulary and grant rows. Callers
// must have passed the ownership gate already; no ownership check happens
// here.
type GrantRepository interface {
	Share(ctx context.Context, eventID, userID int64, permissionName string) (*Permission, error)
	ListByEvent(ctx context.Context, eventID int64) ([]PermissionGrant, error)
	Revoke(ctx context.Context, eventID, userID int64, permissionName string) error
}
