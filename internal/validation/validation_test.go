package validation

import (
	"strings"
	"testing"
)

func TestIsValidAlertID(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want bool
	}{
		{"simple id", "a1b2c3", true},
		{"renewal id", "renewal-svc_42-2025-06", true},
		{"empty", "", false},
		{"spaces", "id with spaces", false},
		{"path traversal", "../etc/passwd", false},
		{"unicode", "идентификатор", false},
		{"too long", strings.Repeat("a", 129), false},
		{"max length", strings.Repeat("a", 128), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidAlertID(tt.id); got != tt.want {
				t.Fatalf("IsValidAlertID(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestIsValidAlertLimit(t *testing.T) {
	tests := []struct {
		limit int
		want  bool
	}{
		{1, true},
		{50, true},
		{200, true},
		{0, false},
		{-5, false},
		{201, false},
	}

	for _, tt := range tests {
		if got := IsValidAlertLimit(tt.limit); got != tt.want {
			t.Fatalf("IsValidAlertLimit(%d) = %v, want %v", tt.limit, got, tt.want)
		}
	}
}
