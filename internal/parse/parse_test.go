package parse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDate(t *testing.T) {
	testCases := []struct {
		name      string
		raw       string
		expected  time.Time
		expectErr bool
	}{
		{
			name:     "Plain day",
			raw:      "2024-06-01",
			expected: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "Surrounding spaces",
			raw:      "  2024-12-31 ",
			expected: time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "Leap day",
			raw:      "2024-02-29",
			expected: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		},
		{name: "Empty", raw: "", expectErr: true},
		{name: "Not a leap year", raw: "2023-02-29", expectErr: true},
		{name: "Day first", raw: "01-06-2024", expectErr: true},
		{name: "With time", raw: "2024-06-01T10:00:00Z", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Date(tc.raw)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, got)
			assert.Equal(t, FormatDate(tc.expected), FormatDate(got))
		})
	}
}

func TestOptionalDate(t *testing.T) {
	got, err := OptionalDate(" ")
	assert.NoError(t, err)
	assert.Nil(t, got)

	got, err = OptionalDate("2024-06-11")
	assert.NoError(t, err)
	if assert.NotNil(t, got) {
		assert.Equal(t, "2024-06-11", FormatDate(*got))
	}

	_, err = OptionalDate("tomorrow")
	assert.Error(t, err)
}

func TestID(t *testing.T) {
	testCases := []struct {
		raw       string
		expected  int64
		expectErr bool
	}{
		{raw: "10", expected: 10},
		{raw: " 42 ", expected: 42},
		{raw: "0", expectErr: true},
		{raw: "-3", expectErr: true},
		{raw: "abc", expectErr: true},
		{raw: "", expectErr: true},
	}

	for _, tc := range testCases {
		got, err := ID(tc.raw)
		if tc.expectErr {
			assert.Error(t, err, tc.raw)
			continue
		}
		assert.NoError(t, err, tc.raw)
		assert.Equal(t, tc.expected, got)
	}
}
