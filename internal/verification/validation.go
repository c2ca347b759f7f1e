package verification

import (
	"github.com/asaskevich/govalidator"

	dErrors "github.com/girishmungarach/doneby-platform-sub001/pkg/domain-errors"
)

const (
	minReasonLength = 10
	maxReasonLength = 500

	minDescriptionLength = 10
	maxDescriptionLength = 500
)

func validateRejectionReason(reason string) error {
	if len(reason) < minReasonLength {
		return dErrors.Newf(dErrors.CodeInvalidInput,
			"rejection reason must be at least %d characters", minReasonLength)
	}
	if len(reason) > maxReasonLength {
		return dErrors.Newf(dErrors.CodeInvalidInput,
			"rejection reason must be at most %d characters", maxReasonLength)
	}
	return nil
}

func validateEvidence(e Evidence) error {
	if _, err := ParseEvidenceType(string(e.Type)); err != nil {
		return err
	}
	if !govalidator.IsRequestURL(e.URL) {
		return dErrors.Newf(dErrors.CodeInvalidInput, "evidence url %q is not an absolute URL", e.URL)
	}
	if len(e.Description) < minDescriptionLength || len(e.Description) > maxDescriptionLength {
		return dErrors.Newf(dErrors.CodeInvalidInput,
			"evidence description must be between %d and %d characters",
			minDescriptionLength, maxDescriptionLength)
	}
	return nil
}
