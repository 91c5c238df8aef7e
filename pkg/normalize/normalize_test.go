package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mosfeqahamed/puprime-scraping/pkg/models"
)

func TestParseDateValid(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{"15/03/2024", time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)},
		{"01/01/2020", time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{"31/12/2023", time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC)},
		{"29/02/2024", time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		got, ok := ParseDate(tt.input)
		require.True(t, ok, "expected %q to parse", tt.input)
		assert.True(t, got.Equal(tt.want), "parsed %q as %v", tt.input, got)
	}
}

func TestParseDateMalformed(t *testing.T) {
	inputs := []string{
		"",
		"2024-03-15",
		"03/15/2024",  // month/day swapped past month 12
		"29/02/2023",  // not a leap year
		"32/01/2024",
		"15/13/2024",
		"yesterday",
		"15/03/24",
	}

	for _, input := range inputs {
		_, ok := ParseDate(input)
		assert.False(t, ok, "expected %q to fail", input)
	}
}

func TestRecordCarriesAllFields(t *testing.T) {
	rec := Record(models.RawRow{
		Date:           "15/03/2024",
		UserID:         "u-1001",
		AccountNumber:  "1001",
		Name:           "Jane Trader",
		Email:          "jane@example.com",
		CampaignSource: "spring-campaign",
		IDStatus:       "verified",
		POAStatus:      "pending",
	})

	assert.Equal(t, "1001", rec.AccountNumber)
	assert.Equal(t, "u-1001", rec.UserID)
	assert.Equal(t, "Jane Trader", rec.Name)
	assert.Equal(t, "jane@example.com", rec.Email)
	assert.Equal(t, "spring-campaign", rec.CampaignSource)
	assert.Equal(t, "verified", rec.IDStatus)
	assert.Equal(t, "pending", rec.POAStatus)
	assert.Equal(t, "15/03/2024", rec.DateString)
	require.NotNil(t, rec.Date)
	assert.Equal(t, time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC), *rec.Date)
}

func TestRecordKeepsMalformedDateString(t *testing.T) {
	rec := Record(models.RawRow{
		Date:          "not-a-date",
		UserID:        "u-1002",
		AccountNumber: "1002",
		Name:          "Sam Trader",
		Email:         "sam@example.com",
	})

	assert.Nil(t, rec.Date)
	assert.Equal(t, "not-a-date", rec.DateString)
	assert.Equal(t, "1002", rec.AccountNumber)
}

func TestRecordsPreservesOrder(t *testing.T) {
	rows := []models.RawRow{
		{Date: "01/01/2024", AccountNumber: "1", UserID: "u1", Name: "A", Email: "a@x.com"},
		{Date: "bad", AccountNumber: "2", UserID: "u2", Name: "B", Email: "b@x.com"},
		{Date: "02/01/2024", AccountNumber: "3", UserID: "u3", Name: "C", Email: "c@x.com"},
	}

	recs := Records(rows)

	require.Len(t, recs, 3)
	assert.Equal(t, "1", recs[0].AccountNumber)
	assert.Nil(t, recs[1].Date)
	assert.Equal(t, "3", recs[2].AccountNumber)
}
