package job

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

// PostgresStore persists job postings in the jobs table.
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

const jobColumns = `id, poster_id, title, company, location, description, status, created_at, updated_at`

func (s *PostgresStore) Insert(ctx context.Context, j Job) error {
	query := `
		INSERT INTO jobs (` + jobColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(j.ID), uuid.UUID(j.PosterID), j.Title, j.Company, j.Location,
		j.Description, string(j.Status), j.CreatedAt, j.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, jobID id.JobID) (Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1`

	j, err := scanJob(s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(jobID)))
	if errors.Is(err, sql.ErrNoRows) {
		return Job{}, sentinel.ErrNotFound
	}
	if err != nil {
		return Job{}, fmt.Errorf("find job: %w", err)
	}
	return j, nil
}

func (s *PostgresStore) Update(ctx context.Context, j Job) (Job, error) {
	query := `
		UPDATE jobs
		SET title = $2, company = $3, location = $4, description = $5, status = $6, updated_at = $7
		WHERE id = $1
		RETURNING ` + jobColumns

	updated, err := scanJob(s.execer(ctx).QueryRowContext(ctx, query,
		uuid.UUID(j.ID), j.Title, j.Company, j.Location, j.Description,
		string(j.Status), j.UpdatedAt))
	if errors.Is(err, sql.ErrNoRows) {
		return Job{}, sentinel.ErrNotFound
	}
	if err != nil {
		return Job{}, fmt.Errorf("update job: %w", err)
	}
	return updated, nil
}

func (s *PostgresStore) ListOpen(ctx context.Context) ([]Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE status = 'open' ORDER BY created_at DESC`

	rows, err := s.execer(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var out []Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (Job, error) {
	var (
		j      Job
		jobID  uuid.UUID
		poster uuid.UUID
		status string
	)
	err := row.Scan(&jobID, &poster, &j.Title, &j.Company, &j.Location,
		&j.Description, &status, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return Job{}, err
	}
	j.ID = id.JobID(jobID)
	j.PosterID = id.ProfileID(poster)
	j.Status = Status(status)
	return j, nil
}
