// Package job manages marketplace job postings.
package job

import (
	"time"

	id "github.com/girishmungarach/doneby-platform-sub001/pkg/domain"
)

// Status of a posting.
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// Job is one marketplace posting.
type Job struct {
	ID          id.JobID
	PosterID    id.ProfileID
	Title       string
	Company     string
	Location    string
	Description string
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
