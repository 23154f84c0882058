package matcher

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/split-dns/internal/dns/domain"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{"nil", nil, []string{}},
		{"trims whitespace", []string{"  corp.local ", "\tlab\n"}, []string{"corp.local", "lab"}},
		{"drops empties", []string{"", "  ", "corp.local", "."}, []string{"corp.local"}},
		{"strips trailing dots", []string{"corp.local.", "lab.."}, []string{"corp.local", "lab"}},
		{"keeps leading dot", []string{".corp.local"}, []string{".corp.local"}},
		{"dedupes keeping order", []string{"b.local", "a.local", "b.local"}, []string{"b.local", "a.local"}},
		{"keeps case", []string{"Corp.Local"}, []string{"Corp.Local"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize_Errors(t *testing.T) {
	for _, bad := range []string{"corp local", "a,b", "corp..local", strings.Repeat("x", 64) + ".local"} {
		t.Run(bad, func(t *testing.T) {
			_, err := Normalize([]string{bad})
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrConfig))
		})
	}
}
