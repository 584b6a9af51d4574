// Package repository defines the storage interfaces the service layer
// programs against, plus the seed dataset every backend loads into an
// empty store. Concrete implementations live in the jsonfile and sqlite
// subpackages; the service never imports either directly.
package repository

import (
	"context"

	"github.com/sakif/dev-directory/internal/model"
)

// DeveloperRepository is the durable home of directory entries.
//
// Implementations must serialize mutations (at most one Create/Update/
// Delete at a time) and guarantee each mutation is committed durably
// before returning: a crash right after a successful call never loses
// that call's effect. List and GetByID may run concurrently and always
// observe a fully pre- or fully post-mutation state, never a torn one.
// Returned records are copies; callers never hold references into the
// store.
type DeveloperRepository interface {
	// List returns the full collection snapshot, newest first.
	List(ctx context.Context) ([]model.Developer, error)
	GetByID(ctx context.Context, id string) (*model.Developer, error)
	// Create assigns a fresh unique ID and timestamps, persists, and
	// fills them into dev.
	Create(ctx context.Context, dev *model.Developer) error
	// Update replaces the record with dev.ID wholesale, refreshing
	// UpdatedAt. Fails with NotFound if the ID is absent.
	Update(ctx context.Context, dev *model.Developer) error
	Delete(ctx context.Context, id string) error
}

// UserRepository is the durable home of accounts. Users are immutable
// after creation; there is no update or delete.
type UserRepository interface {
	List(ctx context.Context) ([]model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	// GetByEmail matches case-insensitively and fails with NotFound
	// when no account carries the email.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// Create assigns ID and timestamps and persists. Fails with
	// Conflict if the email is already registered.
	Create(ctx context.Context, user *model.User) error
}

// PasswordHasher is the slice of auth.PasswordService the seed needs.
// Declared here so backends can seed the admin account without
// depending on the auth package's concrete type.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
}
