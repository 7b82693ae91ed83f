package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/vaccine-scheduler/internal/domain"
	apperrors "github.com/spec-kit/vaccine-scheduler/pkg/util/errorutil"
)

func TestParseDate(t *testing.T) {
	date, err := domain.ParseDate("2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01", date.String())
	assert.False(t, date.IsZero())
}

func TestParseDateInvalid(t *testing.T) {
	for _, input := range []string{"", "yesterday", "2024-13-01", "2024-02-30", "06/01/2024"} {
		_, err := domain.ParseDate(input)
		assert.True(t, apperrors.IsCode(err, "INVALID_DATE"), "input %q", input)
	}
}

func TestDateOfTruncatesToDay(t *testing.T) {
	ts := time.Date(2024, time.June, 1, 17, 45, 12, 0, time.UTC)
	date := domain.DateOf(ts)
	assert.Equal(t, "2024-06-01", date.String())
	assert.True(t, date.Equal(domain.NewDate(2024, time.June, 1)))
}
