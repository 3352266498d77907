package intel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"clean text untouched", "rendezvous at 0400", "rendezvous at 0400"},
		{"strips angle brackets", "<script>alert(1)</script>", "scriptalert(1)/script"},
		{"preserves everything else", `a&"b' c=d%e`, `a&"b' c=d%e`},
		{"unicode preserved", "zona còdice ü", "zona còdice ü"},
		{"only brackets", "<<>>", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.input))
		})
	}
}

func TestClampClearance(t *testing.T) {
	tests := []struct {
		input int
		want  int
	}{
		{-5, 0},
		{-1, 0},
		{0, 0},
		{2, 2},
		{3, 3},
		{4, 3},
		{99, 3},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampClearance(tt.input))
	}
}

func TestStatus_Valid(t *testing.T) {
	for _, s := range AllStatuses {
		assert.True(t, s.Valid(), "status %s", s)
	}
	assert.False(t, Status("RUNNING").Valid())
	assert.False(t, Status("").Valid())
}
