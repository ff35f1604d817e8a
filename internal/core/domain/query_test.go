package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryPolicy_EffectiveLimit(t *testing.T) {
	p := DefaultQueryPolicy()

	tests := []struct {
		name     string
		override int
		want     int
	}{
		{"zero uses policy max", 0, DefaultMaxRows},
		{"negative uses policy max", -5, DefaultMaxRows},
		{"within cap honoured", 10, 10},
		{"at cap honoured", DefaultMaxRows, DefaultMaxRows},
		{"over cap clamped", DefaultMaxRows + 1, DefaultMaxRows},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.EffectiveLimit(tt.override))
		})
	}
}

func TestDefaultDenyList_CoversModifyingKeywords(t *testing.T) {
	deny := DefaultDenyList()

	for _, kw := range []string{"INSERT", "UPDATE", "DELETE", "DROP", "ALTER", "PRAGMA"} {
		assert.Contains(t, deny, kw)
	}
}

func TestQueryRejectedError_Unwrap(t *testing.T) {
	err := RejectQuery("statement stacking: %d terminators", 2)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrQueryRejected))

	var rejected *QueryRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "statement stacking: 2 terminators", rejected.Reason)
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr bool
	}{
		{"defaults valid", func(*Settings) {}, false},
		{"threshold above one", func(s *Settings) { s.RelevanceThreshold = 1.5 }, true},
		{"negative threshold", func(s *Settings) { s.RelevanceThreshold = -0.1 }, true},
		{"zero per-call timeout", func(s *Settings) { s.PerCallTimeout = 0 }, true},
		{"negative concurrency", func(s *Settings) { s.MaxConcurrency = -1 }, true},
		{"zero row cap", func(s *Settings) { s.Query.MaxRows = 0 }, true},
		{"zero query timeout", func(s *Settings) { s.Query.Timeout = 0 }, true},
		{"unknown provider", func(s *Settings) { s.Provider = "cloudy" }, true},
		{"known provider", func(s *Settings) { s.Provider = AIProviderOllama }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
