package api

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportArgs_ZeroObservedAtIsSent(t *testing.T) {
	args := ReportArgs{
		EventType:  "meteor",
		Latitude:   1,
		Longitude:  2,
		ObservedAt: NewTimestamp(time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)),
	}
	b, err := json.Marshal(args)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"event_type":"meteor","description":null,"latitude":1,"longitude":2,"observed_at":"0001-01-01T00:00:00.000Z"}`,
		string(b))
}

func TestReport_Decode(t *testing.T) {
	var r Report
	require.NoError(t, json.Unmarshal([]byte(`{"id": 4, "event_type": "flash", "description": "low",
		"latitude": -26.2, "longitude": 28.04,
		"observed_at": "2024-05-01T20:15:00", "created_at": null}`), &r))

	assert.Equal(t, int64(4), r.ID)
	assert.True(t, r.HasDescription())
	assert.Equal(t, time.Date(2024, time.May, 1, 20, 15, 0, 0, time.UTC), r.ObservedAt.Time)
	assert.True(t, r.CreatedAt.IsZero())
}

func TestTimestamp_Layouts(t *testing.T) {
	want := time.Date(2024, time.May, 1, 20, 15, 0, 0, time.UTC)
	for _, in := range []string{
		`"2024-05-01T20:15:00Z"`,
		`"2024-05-01T22:15:00+02:00"`,
		`"2024-05-01T20:15:00.000"`,
		`"2024-05-01T20:15:00"`,
		`"2024-05-01T20:15"`,
	} {
		var ts Timestamp
		require.NoError(t, json.Unmarshal([]byte(in), &ts), in)
		assert.True(t, want.Equal(ts.Time), in)
	}

	var ts Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
}
