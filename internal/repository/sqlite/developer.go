package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/dev-directory/internal/apperror"
	"github.com/sakif/dev-directory/internal/model"
	"github.com/sakif/dev-directory/internal/repository"
)

// compile-time check that *DB implements repository.DeveloperRepository
var _ repository.DeveloperRepository = (*DB)(nil)

func encodeStack(stack []string) (string, error) {
	b, err := json.Marshal(stack)
	if err != nil {
		return "", fmt.Errorf("sqlite: encoding tech stack: %w", err)
	}
	return string(b), nil
}

func decodeStack(raw string) ([]string, error) {
	var stack []string
	if err := json.Unmarshal([]byte(raw), &stack); err != nil {
		return nil, fmt.Errorf("sqlite: decoding tech stack: %w", err)
	}
	return stack, nil
}

const developerColumns = `id, name, role, tech_stack, experience, about, joining_date, created_by, created_at, updated_at`

func scanDeveloper(scan func(...any) error) (*model.Developer, error) {
	var (
		d     model.Developer
		role  string
		stack string
	)
	if err := scan(
		&d.ID, &d.Name, &role, &stack, &d.Experience,
		&d.About, &d.JoiningDate, &d.CreatedBy, &d.CreatedAt, &d.UpdatedAt,
	); err != nil {
		return nil, err
	}
	d.Role = model.Role(role)

	techStack, err := decodeStack(stack)
	if err != nil {
		return nil, err
	}
	d.TechStack = techStack
	return &d, nil
}

// List returns the full collection, newest first. Filtering and
// pagination are the query engine's job; the store only hands over
// the snapshot.
func (db *DB) List(ctx context.Context) ([]model.Developer, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+developerColumns+` FROM developers ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing developers: %w", err)
	}
	defer rows.Close()

	var devs []model.Developer
	for rows.Next() {
		d, err := scanDeveloper(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning developer row: %w", err)
		}
		devs = append(devs, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating developers: %w", err)
	}

	return devs, nil
}

func (db *DB) GetByID(ctx context.Context, id string) (*model.Developer, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+developerColumns+` FROM developers WHERE id = ?`, id)

	d, err := scanDeveloper(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("developer", id)
		}
		return nil, fmt.Errorf("sqlite: getting developer %s: %w", id, err)
	}
	return d, nil
}

// Create assigns an xid and timestamps, then inserts. xids are never
// reused, so a deleted developer's id can't come back.
func (db *DB) Create(ctx context.Context, dev *model.Developer) error {
	dev.ID = xid.New().String()
	now := time.Now().UTC().Truncate(time.Second)
	dev.CreatedAt = now
	dev.UpdatedAt = now

	stack, err := encodeStack(dev.TechStack)
	if err != nil {
		return err
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO developers (`+developerColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		dev.ID, dev.Name, string(dev.Role), stack, dev.Experience,
		dev.About, dev.JoiningDate, dev.CreatedBy, dev.CreatedAt, dev.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating developer: %w", err)
	}

	return nil
}

// Update replaces the mutable fields of an existing row. id,
// created_by, and created_at are immutable. RowsAffected detects the
// missing-row case without a second query.
func (db *DB) Update(ctx context.Context, dev *model.Developer) error {
	dev.UpdatedAt = time.Now().UTC().Truncate(time.Second)

	stack, err := encodeStack(dev.TechStack)
	if err != nil {
		return err
	}

	result, err := db.conn.ExecContext(ctx,
		`UPDATE developers
		 SET name = ?, role = ?, tech_stack = ?, experience = ?, about = ?, joining_date = ?, updated_at = ?
		 WHERE id = ?`,
		dev.Name, string(dev.Role), stack, dev.Experience,
		dev.About, dev.JoiningDate, dev.UpdatedAt, dev.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating developer %s: %w", dev.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("developer", dev.ID)
	}

	return nil
}

func (db *DB) Delete(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM developers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting developer %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("developer", id)
	}

	return nil
}
