package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringSlice_KeepsCommas(t *testing.T) {
	in := StringSlice{"Robert Downey, Jr.", "Gwyneth Paltrow"}

	v, err := in.Value()
	require.NoError(t, err)

	var out StringSlice
	require.NoError(t, out.Scan(v))
	assert.Equal(t, in, out)
}

func TestStringSlice_Scan(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  StringSlice
	}{
		{name: "nil", value: nil, want: StringSlice{}},
		{name: "empty string", value: "", want: StringSlice{}},
		{name: "bytes", value: []byte(`["a","b"]`), want: StringSlice{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s StringSlice
			require.NoError(t, s.Scan(tt.value))
			assert.Equal(t, tt.want, s)
		})
	}
}

func TestStringSlice_ScanRejectsUnknownType(t *testing.T) {
	var s StringSlice
	assert.Error(t, s.Scan(42))
}
