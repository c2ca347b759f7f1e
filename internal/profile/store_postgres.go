package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	id "github.com/girishmungarach/doneby-platform-sub001/pkg/domain"
	"github.com/girishmungarach/doneby-platform-sub001/pkg/platform/sentinel"
	"github.com/girishmungarach/doneby-platform-sub001/pkg/platform/tx"
)

// PostgresStore persists profiles in the profiles table. Email uniqueness is
// enforced by the table's unique index; the insert claims the address
// atomically.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) execer {
	if t := tx.From(ctx); t != nil {
		return t
	}
	return s.db
}

const profileColumns = `id, email, name, headline, password_hash, created_at, updated_at`

func (s *PostgresStore) CreateIfEmailAvailable(ctx context.Context, p Profile) error {
	query := `
		INSERT INTO profiles (` + profileColumns + `)
		VALUES ($1, lower($2), $3, $4, $5, $6, $7)
		ON CONFLICT (email) DO NOTHING`

	res, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(p.ID), p.Email, p.Name, p.Headline, p.PasswordHash, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, profileID id.ProfileID) (Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	return s.findOne(ctx, query, uuid.UUID(profileID))
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE email = lower($1)`
	return s.findOne(ctx, query, email)
}

func (s *PostgresStore) findOne(ctx context.Context, query string, arg any) (Profile, error) {
	var (
		p         Profile
		profileID uuid.UUID
	)
	err := s.execer(ctx).QueryRowContext(ctx, query, arg).
		Scan(&profileID, &p.Email, &p.Name, &p.Headline, &p.PasswordHash, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Profile{}, sentinel.ErrNotFound
	}
	if err != nil {
		return Profile{}, fmt.Errorf("find profile: %w", err)
	}
	p.ID = id.ProfileID(profileID)
	return p, nil
}

func (s *PostgresStore) Update(ctx context.Context, p Profile) (Profile, error) {
	query := `
		UPDATE profiles
		SET name = $2, headline = $3, password_hash = $4, updated_at = $5
		WHERE id = $1
		RETURNING ` + profileColumns

	var (
		updated   Profile
		profileID uuid.UUID
	)
	err := s.execer(ctx).QueryRowContext(ctx, query,
		uuid.UUID(p.ID), p.Name, p.Headline, p.PasswordHash, p.UpdatedAt).
		Scan(&profileID, &updated.Email, &updated.Name, &updated.Headline,
			&updated.PasswordHash, &updated.CreatedAt, &updated.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Profile{}, sentinel.ErrNotFound
	}
	if err != nil {
		return Profile{}, fmt.Errorf("update profile: %w", err)
	}
	updated.ID = id.ProfileID(profileID)
	return updated, nil
}
