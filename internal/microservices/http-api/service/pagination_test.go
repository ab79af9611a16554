package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64    { return &v }
func intPtr(v int) *int          { return &v }
func strPtr(v string) *string    { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestValidatePageRequest_Defaults(t *testing.T) {
	cursor, limit, err := ValidatePageRequest(nil, nil, nil)

	require.NoError(t, err)
	assert.Nil(t, cursor)
	assert.Equal(t, DefaultPageLimit, limit)
}

func TestValidatePageRequest_LimitClamping(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"zero clamps to min", 0, MinPageLimit},
		{"negative clamps to min", -5, MinPageLimit},
		{"above max clamps to max", 500, MaxPageLimit},
		{"in range kept", 25, 25},
		{"min kept", MinPageLimit, MinPageLimit},
		{"max kept", MaxPageLimit, MaxPageLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, limit, err := ValidatePageRequest(nil, nil, &tt.limit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, limit)
		})
	}
}

func TestValidatePageRequest_PairingRule(t *testing.T) {
	t.Run("only last_id fails", func(t *testing.T) {
		_, _, err := ValidatePageRequest(int64Ptr(5), nil, nil)
		assert.ErrorIs(t, err, ErrInvalidCursor)
	})

	t.Run("only last_date fails", func(t *testing.T) {
		_, _, err := ValidatePageRequest(nil, strPtr("2024-03-01T10:00:00Z"), nil)
		assert.ErrorIs(t, err, ErrInvalidCursor)
	})
}

func TestValidatePageRequest_LastID(t *testing.T) {
	date := strPtr("2024-03-01T10:00:00Z")

	t.Run("zero rejected", func(t *testing.T) {
		_, _, err := ValidatePageRequest(int64Ptr(0), date, nil)
		assert.ErrorIs(t, err, ErrInvalidCursor)
	})

	t.Run("negative rejected", func(t *testing.T) {
		_, _, err := ValidatePageRequest(int64Ptr(-3), date, nil)
		assert.ErrorIs(t, err, ErrInvalidCursor)
	})

	t.Run("positive accepted", func(t *testing.T) {
		cursor, _, err := ValidatePageRequest(int64Ptr(42), date, nil)
		require.NoError(t, err)
		require.NotNil(t, cursor)
		assert.Equal(t, int64(42), cursor.LastID)
	})
}

func TestValidatePageRequest_LastDate(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"rfc3339 with Z", "2024-03-01T10:00:00Z", false},
		{"rfc3339 with offset", "2024-03-01T10:00:00+02:00", false},
		{"fractional seconds", "2024-03-01T10:00:00.123456Z", false},
		{"bare iso without zone", "2024-03-01T10:00:00", false},
		{"space separated", "2024-03-01 10:00:00", false},
		{"garbage", "not-a-date", true},
		{"date only garbage suffix", "2024-03-01T99:99:99", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cursor, _, err := ValidatePageRequest(int64Ptr(1), &tt.value, nil)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCursor)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, cursor)
			assert.Equal(t, time.UTC, cursor.LastDate.Location())
		})
	}
}

func TestValidatePageRequest_ZNormalizedToUTC(t *testing.T) {
	cursor, _, err := ValidatePageRequest(int64Ptr(1), strPtr("2024-03-01T12:30:00+02:00"), nil)

	require.NoError(t, err)
	require.NotNil(t, cursor)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC), cursor.LastDate)
}
