package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCost(t *testing.T) {
	cases := []struct {
		in   string
		want Cost
	}{
		{"0", 0},
		{"150", 15000},
		{"150.5", 15050},
		{"150.50", 15050},
		{"150.05", 15005},
		{"0.01", 1},
	}
	for _, c := range cases {
		got, err := ParseCost(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, got, c.in)
	}
}

func TestParseCostRejectsBadInput(t *testing.T) {
	for _, c := range []string{"", "-5", "1,50", "1.500", "1.", ".50", "1e3", "10 "} {
		_, err := ParseCost(c)
		require.Error(t, err, c)
		assert.True(t, IsCode(err, CodeBadValue), c)
	}
}

func TestParseCostRejectsOverflow(t *testing.T) {
	// the largest representable amount still parses
	got, err := ParseCost("184467440737095515.15")
	require.NoError(t, err)
	assert.Equal(t, Cost(18446744073709551515), got)

	for _, c := range []string{"184467440737095516", "184467440737095516.00", "99999999999999999999"} {
		_, err := ParseCost(c)
		require.Error(t, err, c)
		assert.True(t, IsCode(err, CodeBadValue), c)
	}
}

func TestCostString(t *testing.T) {
	assert.Equal(t, "150.05", Cost(15005).String())
	assert.Equal(t, "0.00", Cost(0).String())
	assert.Equal(t, "0.07", Cost(7).String())
}
