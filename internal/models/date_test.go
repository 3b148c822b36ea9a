package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateScan(t *testing.T) {
	want := NewDate(2025, time.May, 12)

	// lib/pq hands DATE columns back as time.Time; the day is taken in the value's own zone
	var fromTime Date
	require.NoError(t, fromTime.Scan(time.Date(2025, time.May, 12, 0, 0, 0, 0, time.FixedZone("UTC+5", 5*60*60))))
	assert.True(t, fromTime.Equal(want), fromTime.String())

	var fromBytes Date
	require.NoError(t, fromBytes.Scan([]byte("2025-05-12")))
	assert.True(t, fromBytes.Equal(want))

	var fromTimestamp Date
	require.NoError(t, fromTimestamp.Scan("2025-05-12T00:00:00Z"))
	assert.True(t, fromTimestamp.Equal(want))

	var d Date
	assert.Error(t, d.Scan(nil))
	assert.Error(t, d.Scan(int64(20250512)))
	assert.Error(t, d.Scan("2025"))
	assert.Error(t, d.Scan([]byte("12.05.2025")))
}

func TestDateValue(t *testing.T) {
	v, err := NewDate(2025, time.May, 12).Value()
	require.NoError(t, err)
	assert.Equal(t, "2025-05-12", v)
}

func TestDateJSON(t *testing.T) {
	raw, err := json.Marshal(NewDate(2025, time.January, 2))
	require.NoError(t, err)
	assert.Equal(t, `"2025-01-02"`, string(raw))

	var in struct {
		Date *Date `json:"date"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2025-01-02"}`), &in))
	require.NotNil(t, in.Date)
	assert.Equal(t, "2025-01-02", in.Date.String())

	in.Date = nil
	require.NoError(t, json.Unmarshal([]byte(`{"date":null}`), &in))
	assert.Nil(t, in.Date)

	for _, body := range []string{`{"date":"2025-13-01"}`, `{"date":20250102}`, `{"date":"02.01.2025"}`} {
		assert.Error(t, json.Unmarshal([]byte(body), &in), body)
	}
}

func TestTodayUsesLocation(t *testing.T) {
	now := time.Date(2025, time.May, 14, 22, 30, 0, 0, time.UTC)
	assert.Equal(t, "2025-05-14", Today(now, nil).String())
	assert.Equal(t, "2025-05-15", Today(now, time.FixedZone("UTC+3", 3*60*60)).String())
}
