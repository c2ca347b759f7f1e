package activity

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	id "github.com/girishmungarach/doneby-platform-sub001/pkg/domain"
	txcontext "github.com/girishmungarach/doneby-platform-sub001/pkg/platform/tx"
)

// PostgresStore persists audit entries in PostgreSQL. Entries carry a
// monotonically increasing seq (bigserial) so listing order is stable even
// when two entries share a timestamp.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore constructs a PostgreSQL-backed activity store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if t := txcontext.From(ctx); t != nil {
		return t
	}
	return s.db
}

func (s *PostgresStore) Append(ctx context.Context, entry Activity) error {
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("marshal activity details: %w", err)
	}

	query := `
		INSERT INTO verification_activities (id, verification_id, type, actor_id, actor_type, timestamp, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(entry.ID),
		uuid.UUID(entry.VerificationID),
		string(entry.Type),
		uuid.UUID(entry.ActorID),
		string(entry.ActorType),
		entry.Timestamp,
		details,
	)
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByVerification(ctx context.Context, verificationID id.VerificationID) ([]Activity, error) {
	query := `
		SELECT id, verification_id, type, actor_id, actor_type, timestamp, details
		FROM verification_activities
		WHERE verification_id = $1
		ORDER BY seq ASC
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query, uuid.UUID(verificationID))
	if err != nil {
		return nil, fmt.Errorf("query activities: %w", err)
	}
	defer rows.Close()

	var entries []Activity
	for rows.Next() {
		var (
			entry          Activity
			entryID        uuid.UUID
			verID          uuid.UUID
			actorID        uuid.UUID
			entryType      string
			actorType      string
			detailsPayload []byte
		)
		err := rows.Scan(&entryID, &verID, &entryType, &actorID, &actorType, &entry.Timestamp, &detailsPayload)
		if err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		if err := json.Unmarshal(detailsPayload, &entry.Details); err != nil {
			return nil, fmt.Errorf("unmarshal activity details: %w", err)
		}
		entry.ID = id.ActivityID(entryID)
		entry.VerificationID = id.VerificationID(verID)
		entry.Type = Type(entryType)
		entry.ActorID = id.ProfileID(actorID)
		entry.ActorType = ActorType(actorType)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activities: %w", err)
	}
	return entries, nil
}
