package payroll

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriod_DaysInMonth(t *testing.T) {
	cases := []struct {
		period Period
		want   int
	}{
		{Period{2024, time.February}, 29},
		{Period{2023, time.February}, 28},
		{Period{1900, time.February}, 28},
		{Period{2000, time.February}, 29},
		{Period{2024, time.April}, 30},
		{Period{2024, time.December}, 31},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.period.DaysInMonth(), c.period.String())
	}
}

func TestPeriod_StandardWorkingDays(t *testing.T) {
	cases := []struct {
		period Period
		want   int
	}{
		{Period{2024, time.June}, 20},
		{Period{2024, time.February}, 21},
		{Period{2023, time.February}, 20},
		{Period{2024, time.July}, 23},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.period.StandardWorkingDays(), c.period.String())
	}
}

func TestNewPeriod(t *testing.T) {
	p, err := NewPeriod(2024, 6)
	require.NoError(t, err)
	assert.Equal(t, "2024-06", p.String())

	for _, c := range [][2]int{{2024, 0}, {2024, 13}, {0, 5}, {10000, 1}} {
		_, err := NewPeriod(c[0], c[1])
		assert.ErrorIs(t, err, ErrInvalidPeriod, "%v", c)
	}
}

func TestPeriod_Contains(t *testing.T) {
	p := Period{2024, time.June}
	assert.True(t, p.Contains(time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, p.Contains(time.Date(2024, time.June, 30, 23, 59, 0, 0, time.UTC)))
	assert.False(t, p.Contains(time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, p.Contains(time.Date(2023, time.June, 15, 0, 0, 0, 0, time.UTC)))
}
