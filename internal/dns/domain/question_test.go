package domain

import (
	"testing"
)

func TestNewQuestion(t *testing.T) {
	tests := []struct {
		name        string
		queryName   string
		rrtype      RRType
		class       RRClass
		expectError bool
	}{
		{
			name:      "valid A record query",
			queryName: "example.com.",
			rrtype:    1, // A record
			class:     1, // IN class
		},
		{
			name:      "valid AAAA record query",
			queryName: "test.example.com.",
			rrtype:    28, // AAAA record
			class:     1,  // IN class
		},
		{
			name:      "unknown type is accepted",
			queryName: "example.com.",
			rrtype:    65,
			class:     1,
		},
		{
			name:      "root name",
			queryName: ".",
			rrtype:    2,
			class:     1,
		},
		{
			name:        "empty name",
			queryName:   "",
			rrtype:      1,
			class:       1,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := NewQuestion(tt.queryName, tt.rrtype, tt.class)
			if tt.expectError {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if q != (Question{}) {
					t.Errorf("expected zero Question on error, got %+v", q)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if q.Name != tt.queryName || q.Type != tt.rrtype || q.Class != tt.class {
				t.Errorf("NewQuestion() = %+v", q)
			}
		})
	}
}
