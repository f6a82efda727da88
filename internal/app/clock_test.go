package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatStamp(t *testing.T) {
	msk := time.FixedZone("MSK", 3*60*60)

	assert.Equal(t, "01.09.2025 (11:05 MSK)", FormatStamp(time.Date(2025, 9, 1, 8, 5, 0, 0, time.UTC), msk))
	assert.Equal(t, "—", FormatStamp(time.Time{}, msk))
}
