package verification

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	id "github.com/girishmungarach/doneby-platform-sub001/pkg/domain"
	"github.com/girishmungarach/doneby-platform-sub001/pkg/platform/sentinel"
	"github.com/girishmungarach/doneby-platform-sub001/pkg/platform/tx"
)

// PostgresStore persists verification records in the verifications table.
// Evidence and metadata are stored as JSONB; the version column backs the
// optimistic concurrency check.
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

const recordColumns = `id, requester_id, verifier_id, timeline_entry_id, status, evidence, metadata, version, created_at, updated_at`

func (s *PostgresStore) Insert(ctx context.Context, record Record) error {
	evidence, metadata, err := marshalRecordJSON(record)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO verifications (` + recordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(record.ID),
		uuid.UUID(record.RequesterID),
		nullableID(uuid.UUID(record.VerifierID)),
		uuid.UUID(record.TimelineEntryID),
		string(record.Status),
		evidence,
		metadata,
		record.Version,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert verification: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, verificationID id.VerificationID) (Record, error) {
	query := `SELECT ` + recordColumns + ` FROM verifications WHERE id = $1`

	record, err := scanRecord(s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(verificationID)))
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, sentinel.ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("find verification: %w", err)
	}
	return record, nil
}

func (s *PostgresStore) Update(ctx context.Context, record Record, expectedVersion int64) (Record, error) {
	evidence, metadata, err := marshalRecordJSON(record)
	if err != nil {
		return Record{}, err
	}

	// The WHERE version guard makes the update a compare-and-swap: only the
	// writer holding the current version commits.
	query := `
		UPDATE verifications
		SET verifier_id = $3, status = $4, evidence = $5, metadata = $6,
		    version = version + 1, updated_at = $7
		WHERE id = $1 AND version = $2
		RETURNING ` + recordColumns

	updated, err := scanRecord(s.execer(ctx).QueryRowContext(ctx, query,
		uuid.UUID(record.ID),
		expectedVersion,
		nullableID(uuid.UUID(record.VerifierID)),
		string(record.Status),
		evidence,
		metadata,
		record.UpdatedAt,
	))
	if errors.Is(err, sql.ErrNoRows) {
		// Row either gone or at a different version; distinguish for the caller.
		if _, findErr := s.FindByID(ctx, record.ID); findErr != nil {
			return Record{}, findErr
		}
		return Record{}, sentinel.ErrStaleVersion
	}
	if err != nil {
		return Record{}, fmt.Errorf("update verification: %w", err)
	}
	return updated, nil
}

func (s *PostgresStore) ListByRequester(ctx context.Context, requesterID id.ProfileID) ([]Record, error) {
	query := `SELECT ` + recordColumns + ` FROM verifications WHERE requester_id = $1 ORDER BY created_at`
	return s.queryRecords(ctx, query, uuid.UUID(requesterID))
}

func (s *PostgresStore) ListByVerifier(ctx context.Context, verifierID id.ProfileID) ([]Record, error) {
	query := `SELECT ` + recordColumns + ` FROM verifications WHERE verifier_id = $1 ORDER BY created_at`
	return s.queryRecords(ctx, query, uuid.UUID(verifierID))
}

func (s *PostgresStore) queryRecords(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list verifications: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan verification: %w", err)
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate verifications: %w", err)
	}
	return out, nil
}

func nullableID(u uuid.UUID) any {
	if u == uuid.Nil {
		return nil
	}
	return u
}

func marshalRecordJSON(record Record) (evidence, metadata []byte, err error) {
	if record.Evidence == nil {
		record.Evidence = []Evidence{}
	}
	evidence, err = json.Marshal(record.Evidence)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal verification evidence: %w", err)
	}
	if record.Metadata == nil {
		record.Metadata = map[string]string{}
	}
	metadata, err = json.Marshal(record.Metadata)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal verification metadata: %w", err)
	}
	return evidence, metadata, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var (
		record    Record
		recordID  uuid.UUID
		requester uuid.UUID
		verifier  uuid.NullUUID
		entryID   uuid.UUID
		status    string
		evidence  []byte
		metadata  []byte
	)
	err := row.Scan(&recordID, &requester, &verifier, &entryID, &status,
		&evidence, &metadata, &record.Version, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		return Record{}, err
	}

	record.ID = id.VerificationID(recordID)
	record.RequesterID = id.ProfileID(requester)
	if verifier.Valid {
		record.VerifierID = id.ProfileID(verifier.UUID)
	}
	record.TimelineEntryID = id.TimelineEntryID(entryID)
	record.Status = Status(status)
	if err := json.Unmarshal(evidence, &record.Evidence); err != nil {
		return Record{}, fmt.Errorf("unmarshal verification evidence: %w", err)
	}
	if err := json.Unmarshal(metadata, &record.Metadata); err != nil {
		return Record{}, fmt.Errorf("unmarshal verification metadata: %w", err)
	}
	return record, nil
}
