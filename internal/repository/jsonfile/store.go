// Package jsonfile implements the repository interfaces over a single
// JSON document on local disk.
//
// PERSISTENCE CONTRACT:
// Every mutation rewrites the entire document before the call returns,
// and the rewrite is atomic: the new content is written to a temp file
// in the same directory, fsynced, then renamed over the old one. A
// crash therefore leaves either the complete pre-mutation or the
// complete post-mutation document on disk, never a torn mixture.
//
// CONCURRENCY:
// One RWMutex serializes mutations (single logical writer); reads take
// the read lock and hand out deep copies, so they observe a consistent
// snapshot and callers never touch the store's own slices.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/dev-directory/internal/apperror"
	"github.com/sakif/dev-directory/internal/model"
	"github.com/sakif/dev-directory/internal/repository"
)

// compile-time checks for the repository interfaces
var (
	_ repository.DeveloperRepository = (*Store)(nil)
	_ repository.UserRepository      = (*userView)(nil)
)

// document is the on-disk layout: the complete dataset in one file.
type document struct {
	Users      []storedUser      `json:"users"`
	Developers []model.Developer `json:"developers"`
}

// storedUser mirrors model.User but serializes the password hash.
// model.User hides it with `json:"-"` so it can never leak through an
// API response; the store still has to persist it.
type storedUser struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func toStored(u model.User) storedUser {
	return storedUser{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func fromStored(s storedUser) model.User {
	return model.User{
		ID:           s.ID,
		Name:         s.Name,
		Email:        s.Email,
		PasswordHash: s.PasswordHash,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

// Store holds the dataset in memory and mirrors every change to disk.
type Store struct {
	path string

	mu         sync.RWMutex
	users      []model.User
	developers []model.Developer
}

// New opens (or creates) the store at path.
//
// A missing file seeds the default dataset and persists it before
// returning, so the store is durable from the first request. An
// existing but unparsable file is fatal: the service must not start
// on a corrupt store and silently serve empty data.
func New(path string, hasher repository.PasswordHasher) (*Store, error) {
	s := &Store{path: path}

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		admin, devs, seedErr := repository.SeedData(hasher)
		if seedErr != nil {
			return nil, fmt.Errorf("jsonfile: seeding store: %w", seedErr)
		}
		s.users = []model.User{admin}
		s.developers = devs
		if err := s.persistLocked(); err != nil {
			return nil, fmt.Errorf("jsonfile: writing seed dataset: %w", err)
		}
		return s, nil

	case err != nil:
		return nil, fmt.Errorf("jsonfile: reading store %s: %w", path, err)
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("jsonfile: store %s is corrupt: %w", path, err)
	}

	s.users = make([]model.User, 0, len(doc.Users))
	for _, u := range doc.Users {
		s.users = append(s.users, fromStored(u))
	}
	s.developers = doc.Developers

	return s, nil
}

// persistLocked writes the whole dataset atomically. The caller must
// hold the write lock (or have exclusive access during New).
func (s *Store) persistLocked() error {
	doc := document{
		Users:      make([]storedUser, 0, len(s.users)),
		Developers: s.developers,
	}
	for _, u := range s.users {
		doc.Users = append(doc.Users, toStored(u))
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling document: %w", err)
	}

	// Temp file in the same directory so the rename can't cross a
	// filesystem boundary (cross-device renames aren't atomic).
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".directory-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing store file: %w", err)
	}

	return nil
}

// =========================================================================
// DeveloperRepository
// =========================================================================

// List returns a snapshot of the full collection, newest first.
func (s *Store) List(_ context.Context) ([]model.Developer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Developer, 0, len(s.developers))
	for _, d := range s.developers {
		out = append(out, d.Clone())
	}
	return out, nil
}

func (s *Store) GetByID(_ context.Context, id string) (*model.Developer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, d := range s.developers {
		if d.ID == id {
			c := d.Clone()
			return &c, nil
		}
	}
	return nil, apperror.NotFound("developer", id)
}

// Create assigns an ID and timestamps, persists, and fills them back
// into dev. New records are prepended so the in-file order stays
// newest-first, matching List.
func (s *Store) Create(_ context.Context, dev *model.Developer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Truncate(time.Second)
	dev.ID = xid.New().String()
	dev.CreatedAt = now
	dev.UpdatedAt = now

	prev := s.developers
	s.developers = append([]model.Developer{dev.Clone()}, s.developers...)

	if err := s.persistLocked(); err != nil {
		s.developers = prev
		return apperror.Internal("failed to persist developer")
	}
	return nil
}

func (s *Store) Update(_ context.Context, dev *model.Developer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, d := range s.developers {
		if d.ID == dev.ID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return apperror.NotFound("developer", dev.ID)
	}

	dev.CreatedAt = s.developers[idx].CreatedAt // immutable
	dev.UpdatedAt = time.Now().UTC().Truncate(time.Second)

	prev := s.developers[idx]
	s.developers[idx] = dev.Clone()

	if err := s.persistLocked(); err != nil {
		s.developers[idx] = prev
		return apperror.Internal("failed to persist developer")
	}
	return nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, d := range s.developers {
		if d.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return apperror.NotFound("developer", id)
	}

	prev := s.developers
	next := make([]model.Developer, 0, len(s.developers)-1)
	next = append(next, s.developers[:idx]...)
	next = append(next, s.developers[idx+1:]...)
	s.developers = next

	if err := s.persistLocked(); err != nil {
		s.developers = prev
		return apperror.Internal("failed to persist deletion")
	}
	return nil
}

// =========================================================================
// UserRepository
// =========================================================================

// Users returns the Store viewed as a UserRepository.
func (s *Store) Users() repository.UserRepository {
	return (*userView)(s)
}

// userView gives the user operations their own method set. One struct
// can't carry two List methods, so the user side of the document gets
// a distinct receiver type sharing the same data and lock.
type userView Store

func (v *userView) List(_ context.Context) ([]model.User, error) {
	s := (*Store)(v)
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.User, len(s.users))
	copy(out, s.users)
	return out, nil
}

func (v *userView) GetByID(_ context.Context, id string) (*model.User, error) {
	s := (*Store)(v)
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.ID == id {
			c := u
			return &c, nil
		}
	}
	return nil, apperror.NotFound("user", id)
}

func (v *userView) GetByEmail(_ context.Context, email string) (*model.User, error) {
	s := (*Store)(v)
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			c := u
			return &c, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (v *userView) Create(_ context.Context, user *model.User) error {
	s := (*Store)(v)
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return apperror.Conflict("user", user.Email)
		}
	}

	now := time.Now().UTC().Truncate(time.Second)
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now

	prev := s.users
	s.users = append(append([]model.User(nil), s.users...), *user)

	if err := s.persistLocked(); err != nil {
		s.users = prev
		return apperror.Internal("failed to persist user")
	}
	return nil
}
