package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"1,5", 1.5},
		{"1.5", 1.5},
		{"0", 0},
		{" 12 ", 12},
		{"0,25", 0.25},
	}
	for _, c := range cases {
		got, err := ParseAmount(c.in)
		require.NoError(t, err, "ввод %q", c.in)
		assert.Equal(t, c.want, got, "ввод %q", c.in)
	}
}

func TestParseAmountRejectsBadInput(t *testing.T) {
	for _, in := range []string{"", "   ", "abc", "-1", "-0,5", "1,5,5"} {
		_, err := ParseAmount(in)
		assert.Error(t, err, "ввод %q", in)
	}
}
