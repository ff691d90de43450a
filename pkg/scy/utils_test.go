package scy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrToRaw(t *testing.T) {
	valid := []struct {
		val      string
		expected uint64
	}{
		{"0", 0},
		{"1", RawPerToken},
		{"1.5", 1_500_000_000},
		{"123456.000000001", 123456_000_000_001},
		{"0.000000001", 1},
	}
	for _, tc := range valid {
		actual, err := StrToRaw(tc.val)
		require.NoError(t, err, tc.val)
		assert.Equal(t, tc.expected, actual, tc.val)
		assert.Equal(t, tc.expected, MustStrToRaw(tc.val))
	}

	invalid := []string{
		"",
		"1.2.3",
		"abc",
		"1.0000000001",
		"99999999999",
	}
	for _, val := range invalid {
		_, err := StrToRaw(val)
		assert.Error(t, err, val)
	}

	assert.Panics(t, func() { MustStrToRaw("nope") })
}

func TestStrFromRaw(t *testing.T) {
	assert.Equal(t, "0.000000000", StrFromRaw(0))
	assert.Equal(t, "0.000000001", StrFromRaw(1))
	assert.Equal(t, "1.000000000", StrFromRaw(RawPerToken))
	assert.Equal(t, "1.500000000", StrFromRaw(1_500_000_000))
	assert.Equal(t, "123456.000000001", StrFromRaw(123456_000_000_001))
}
