package export

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatTimestamp(t *testing.T) {
	now := time.Date(2025, 7, 22, 15, 4, 0, 0, time.UTC)

	tests := []struct {
		name string
		ts   string
		want string
	}{
		{"same day", "1753160757.123400", "Today 5:05 AM"},
		{"previous day", "1753074357.000100", "Yesterday 5:05 AM"},
		{"within the week", "1752814800.000000", "Friday 5:00 AM"},
		{"older same year", "1736067600.000000", "Jan 5 9:00 AM"},
		{"previous year", "1735645200.000000", "Dec 31, 2024 11:40 AM"},
		{"unparseable passes through", "not-a-timestamp", "not-a-timestamp"},
		{"empty passes through", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatTimestamp(tt.ts, now))
		})
	}
}
