package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyToken(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		wantKind SubjectKind
		wantErr  bool
	}{
		{"resident token", "RES-ABCDEFGH23", KindResident, false},
		{"visitor token", "VIS-ABCDEFGH23", KindVisitor, false},
		{"visit request token", "REQ-ABCDEFGH23", KindVisitRequest, false},
		{"unknown prefix", "FOO-ABCDEFGH23", "", true},
		{"no prefix", "ABCDEFGH23", "", true},
		{"empty token", "", "", true},
		{"dash only", "-", "", true},
		{"lowercase prefix rejected", "res-ABCDEFGH23", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject, err := ClassifyToken(tt.token)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, subject.Kind())
			assert.Equal(t, tt.token, subject.ExternalID())
		})
	}
}

func TestNewSubject(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		subject, err := NewSubject(KindResident, "RES-ABCDEFGH23")
		require.NoError(t, err)
		assert.Equal(t, KindResident, subject.Kind())
		assert.Equal(t, "RES-ABCDEFGH23", subject.ExternalID())
		assert.False(t, subject.IsZero())
	})

	t.Run("missing external ID", func(t *testing.T) {
		_, err := NewSubject(KindResident, "")
		assert.Error(t, err)
	})

	t.Run("invalid kind", func(t *testing.T) {
		_, err := NewSubject(SubjectKind("gate"), "RES-ABCDEFGH23")
		assert.Error(t, err)
	})
}

func TestSubjectString(t *testing.T) {
	subject, err := NewSubject(KindVisitor, "VIS-ABCDEFGH23")
	require.NoError(t, err)
	assert.Equal(t, "visitor/VIS-ABCDEFGH23", subject.String())
}

func TestSubjectIsZero(t *testing.T) {
	assert.True(t, Subject{}.IsZero())
}
