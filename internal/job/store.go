package job

import (
	"context"

	id "github.com/girishmungarach/doneby-platform-sub001/pkg/domain"
)

// Store persists job postings. ListOpen returns open postings newest first.
type Store interface {
	Insert(ctx context.Context, j Job) error
	FindByID(ctx context.Context, jobID id.JobID) (Job, error)
	Update(ctx context.Context, j Job) (Job, error)
	ListOpen(ctx context.Context) ([]Job, error)
}
