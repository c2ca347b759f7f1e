package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveDisplayName(t *testing.T) {
	cases := []struct {
		address string
		want    string
	}{
		{"jane.doe@example.com", "Jane Doe"},
		{"girish_m@example.com", "Girish M"},
		{"sam+jobs@example.com", "Sam Jobs"},
		{"admin@example.com", "Admin"},
		{"a.b.c@example.com", "A B C"},
		{"@example.com", "New User"},
		{"", "New User"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, DeriveDisplayName(tc.address), tc.address)
	}
}
