package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "github.com/girishmungarach/doneby-platform-sub001/pkg/domain-errors"
)

// TestParseUUID_Invariants validates the parsing invariant:
// "IDs must be valid, non-empty, non-nil UUIDs"
func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseVerificationID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseVerificationID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseVerificationID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		validUUID := uuid.New()
		parsed, err := ParseVerificationID(validUUID.String())
		require.NoError(t, err)
		assert.Equal(t, VerificationID(validUUID), parsed)
	})
}

// TestTypeDistinction verifies the compiler enforces type safety.
// This is a compile-time check - if this compiles, the invariant holds.
func TestTypeDistinction(t *testing.T) {
	profileID := ProfileID(uuid.New())
	verificationID := VerificationID(uuid.New())

	// These would fail to compile if types were interchangeable:
	// var _ ProfileID = verificationID   // compile error
	// var _ VerificationID = profileID   // compile error

	assert.NotEqual(t, uuid.UUID(profileID), uuid.UUID(verificationID))
}

// TestParseID_SecurityInvariants validates trust-boundary parsing rules:
// parsing must reject attack vectors at API entry points.
func TestParseID_SecurityInvariants(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		// Attack vectors
		{"SQL injection attempt", "'; DROP TABLE verifications;--", true},
		{"Path traversal", "../../../etc/passwd", true},
		{"Null byte injection", "550e8400\x00-e29b-41d4-a716-446655440000", true},
		{"Oversized input", strings.Repeat("a", 1000), true},
		{"Unicode zero-width space", "550e8400​-e29b-41d4-a716-446655440000", true},

		// Edge cases
		{"Empty string", "", true},
		{"Nil UUID", uuid.Nil.String(), true},
		{"Whitespace only", "   ", true},
		{"Uppercase valid UUID", "550E8400-E29B-41D4-A716-446655440000", false},

		// Valid
		{"Valid UUID lowercase", "550e8400-e29b-41d4-a716-446655440000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseProfileID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

// TestAllIDTypes_ConsistentBehavior ensures all ID types share identical
// parsing behavior; inconsistent validation across ID types would create holes.
func TestAllIDTypes_ConsistentBehavior(t *testing.T) {
	validUUID := uuid.New().String()
	invalidInputs := []string{"", "invalid", uuid.Nil.String()}

	t.Run("all accept valid UUID", func(t *testing.T) {
		_, errProfile := ParseProfileID(validUUID)
		_, errVerification := ParseVerificationID(validUUID)
		_, errTimeline := ParseTimelineEntryID(validUUID)
		_, errActivity := ParseActivityID(validUUID)
		_, errNotification := ParseNotificationID(validUUID)
		_, errJob := ParseJobID(validUUID)

		require.NoError(t, errProfile)
		require.NoError(t, errVerification)
		require.NoError(t, errTimeline)
		require.NoError(t, errActivity)
		require.NoError(t, errNotification)
		require.NoError(t, errJob)
	})

	for _, input := range invalidInputs {
		t.Run("all reject: "+input, func(t *testing.T) {
			_, errProfile := ParseProfileID(input)
			_, errVerification := ParseVerificationID(input)
			_, errTimeline := ParseTimelineEntryID(input)
			_, errActivity := ParseActivityID(input)
			_, errNotification := ParseNotificationID(input)
			_, errJob := ParseJobID(input)

			require.Error(t, errProfile)
			require.Error(t, errVerification)
			require.Error(t, errTimeline)
			require.Error(t, errActivity)
			require.Error(t, errNotification)
			require.Error(t, errJob)
		})
	}
}

// FuzzParseVerificationID ensures the parser never panics and only accepts
// canonical non-nil UUIDs.
func FuzzParseVerificationID(f *testing.F) {
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("")
	f.Add("not-a-uuid")
	f.Add(uuid.Nil.String())

	f.Fuzz(func(t *testing.T, input string) {
		parsed, err := ParseVerificationID(input)
		if err == nil && uuid.UUID(parsed) == uuid.Nil {
			t.Fatalf("parser accepted nil UUID from input %q", input)
		}
	})
}
