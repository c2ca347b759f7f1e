package job

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	id "github.com/girishmungarach/doneby-platform-sub001/pkg/domain"
	dErrors "github.com/girishmungarach/doneby-platform-sub001/pkg/domain-errors"
	"github.com/girishmungarach/doneby-platform-sub001/pkg/platform/sentinel"
	"github.com/girishmungarach/doneby-platform-sub001/pkg/requestcontext"
)

// Service manages job postings.
type Service struct {
	store  Store
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New creates a job Service.
func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("job store is required")
	}
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Post opens a new posting.
func (s *Service) Post(ctx context.Context, j Job) (Job, error) {
	if j.PosterID.IsNil() {
		return Job{}, dErrors.New(dErrors.CodeInvalidInput, "job poster is required")
	}
	if strings.TrimSpace(j.Title) == "" {
		return Job{}, dErrors.New(dErrors.CodeInvalidInput, "job title is required")
	}
	if strings.TrimSpace(j.Company) == "" {
		return Job{}, dErrors.New(dErrors.CodeInvalidInput, "job company is required")
	}

	now := requestcontext.Now(ctx)
	j.ID = id.NewJobID()
	j.Status = StatusOpen
	j.CreatedAt = now
	j.UpdatedAt = now

	if err := s.store.Insert(ctx, j); err != nil {
		return Job{}, dErrors.Wrap(err, dErrors.CodeInternal, "post job")
	}
	return j, nil
}

// Get returns the posting by id.
func (s *Service) Get(ctx context.Context, jobID id.JobID) (Job, error) {
	j, err := s.store.FindByID(ctx, jobID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return Job{}, dErrors.New(dErrors.CodeNotFound, "job not found")
	}
	if err != nil {
		return Job{}, dErrors.Wrap(err, dErrors.CodeInternal, "get job")
	}
	return j, nil
}

// ListOpen returns open postings, newest first.
func (s *Service) ListOpen(ctx context.Context) ([]Job, error) {
	jobs, err := s.store.ListOpen(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list jobs")
	}
	return jobs, nil
}

// Close closes a posting. Only the poster may close it; closing an already
// closed posting is a no-op.
func (s *Service) Close(ctx context.Context, jobID id.JobID, actorID id.ProfileID) (Job, error) {
	j, err := s.Get(ctx, jobID)
	if err != nil {
		return Job{}, err
	}
	if j.PosterID != actorID {
		return Job{}, dErrors.New(dErrors.CodeForbidden, "only the poster can close a job")
	}
	if j.Status == StatusClosed {
		return j, nil
	}

	j.Status = StatusClosed
	j.UpdatedAt = requestcontext.Now(ctx)

	j, err = s.store.Update(ctx, j)
	if err != nil {
		return Job{}, dErrors.Wrap(err, dErrors.CodeInternal, "close job")
	}
	return j, nil
}
