package timeline

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

// PostgresStore persists timeline entries in the timeline_entries table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) execer {
	if t := tx.From(ctx); t != nil {
		return t
	}
	return s.db
}

const entryColumns = `id, profile_id, kind, title, organization, start_date, end_date, description, verified, trust_score, created_at, updated_at`

func (s *PostgresStore) Insert(ctx context.Context, entry Entry) error {
	query := `
		INSERT INTO timeline_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(entry.ID),
		uuid.UUID(entry.ProfileID),
		string(entry.Kind),
		entry.Title,
		entry.Organization,
		entry.StartDate,
		entry.EndDate,
		entry.Description,
		entry.Verified,
		entry.TrustScore,
		entry.CreatedAt,
		entry.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert timeline entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, entryID id.TimelineEntryID) (Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM timeline_entries WHERE id = $1`

	entry, err := scanEntry(s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(entryID)))
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, sentinel.ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("find timeline entry: %w", err)
	}
	return entry, nil
}

func (s *PostgresStore) Update(ctx context.Context, entry Entry) (Entry, error) {
	query := `
		UPDATE timeline_entries
		SET kind = $2, title = $3, organization = $4, start_date = $5, end_date = $6,
		    description = $7, verified = $8, trust_score = $9, updated_at = $10
		WHERE id = $1
		RETURNING ` + entryColumns

	updated, err := scanEntry(s.execer(ctx).QueryRowContext(ctx, query,
		uuid.UUID(entry.ID),
		string(entry.Kind),
		entry.Title,
		entry.Organization,
		entry.StartDate,
		entry.EndDate,
		entry.Description,
		entry.Verified,
		entry.TrustScore,
		entry.UpdatedAt,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, sentinel.ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("update timeline entry: %w", err)
	}
	return updated, nil
}

func (s *PostgresStore) ListByProfile(ctx context.Context, profileID id.ProfileID) ([]Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM timeline_entries WHERE profile_id = $1 ORDER BY start_date DESC`

	rows, err := s.execer(ctx).QueryContext(ctx, query, uuid.UUID(profileID))
	if err != nil {
		return nil, fmt.Errorf("list timeline entries: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan timeline entry: %w", err)
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate timeline entries: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (Entry, error) {
	var (
		entry   Entry
		entryID uuid.UUID
		profile uuid.UUID
		kind    string
		endDate sql.NullTime
		score   sql.NullFloat64
	)
	err := row.Scan(&entryID, &profile, &kind, &entry.Title, &entry.Organization,
		&entry.StartDate, &endDate, &entry.Description, &entry.Verified, &score,
		&entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		return Entry{}, err
	}

	entry.ID = id.TimelineEntryID(entryID)
	entry.ProfileID = id.ProfileID(profile)
	entry.Kind = Kind(kind)
	if endDate.Valid {
		entry.EndDate = &endDate.Time
	}
	if score.Valid {
		entry.TrustScore = &score.Float64
	}
	return entry, nil
}
