package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/resdesk/internal/models"
)

func sample() []models.Reservation {
	created := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	return []models.Reservation{
		{
			ID:          "r1",
			OrderNumber: "1001",
			Name:        "Nguyen, Lan",
			Phone:       "0900000001",
			Area:        models.AreaHanoi,
			Restaurant:  "Old Quarter",
			Date:        "2025-06-02",
			Hour:        "7",
			Minute:      "5",
			GuestCount:  4,
			Message:     "window seat\nplease",
			Status:      models.StatusPending,
			CreatedAt:   created,
			UpdatedAt:   created.Add(time.Hour),
		},
		{ID: "r2", Name: "Minh", Status: models.StatusReady},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" CSV ")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("xlsx")
	assert.Error(t, err)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, sample()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, Columns, records[0])

	first := records[1]
	assert.Equal(t, "r1", first[0])
	assert.Equal(t, "1001", first[1])
	assert.Equal(t, "Nguyen, Lan", first[3])
	assert.Equal(t, "2025-06-02 07:05", first[8])
	assert.Equal(t, "4", first[9])
	assert.Equal(t, "window seat\nplease", first[10])
	assert.Equal(t, "2025-06-01T09:00:00Z", first[11])
	assert.Equal(t, "2025-06-01T10:00:00Z", first[12])

	second := records[2]
	assert.Equal(t, "", second[8])
	assert.Equal(t, "", second[11])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, sample()))

	var rows []Row
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "2025-06-02 07:05", rows[0].ReservationTime)
	assert.Equal(t, "Ready", rows[1].Status)
}

func TestWriteEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestWriteUnknownFormat(t *testing.T) {
	assert.Error(t, Write(&bytes.Buffer{}, Format("xml"), sample()))
}
