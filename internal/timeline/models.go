// Package timeline manages the career timeline entries that verifications
// review. A completed verification marks its entry verified and may attach a
// trust score.
package timeline

import (
	"time"

	id "github.com/girishmungarach/doneby-platform-sub001/pkg/domain"
	dErrors "github.com/girishmungarach/doneby-platform-sub001/pkg/domain-errors"
)

// Kind classifies a timeline entry.
type Kind string

const (
	KindWork          Kind = "work"
	KindCertification Kind = "certification"
	KindEducation     Kind = "education"
)

// ParseKind validates a raw kind string.
func ParseKind(raw string) (Kind, error) {
	switch Kind(raw) {
	case KindWork, KindCertification, KindEducation:
		return Kind(raw), nil
	}
	return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown timeline entry kind %q", raw)
}

// Entry is one item on a profile's career timeline. Verified and TrustScore
// are written only by verification completion, never by the owner.
type Entry struct {
	ID           id.TimelineEntryID
	ProfileID    id.ProfileID
	Kind         Kind
	Title        string
	Organization string
	StartDate    time.Time
	EndDate      *time.Time // nil for current positions
	Description  string
	Verified     bool
	TrustScore   *float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
