package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    time.Time
		wantErr bool
	}{
		{"catalog date", `"2030-03-15"`, time.Date(2030, 3, 15, 0, 0, 0, 0, time.UTC), false},
		{"rfc3339", `"2030-03-15T09:30:00Z"`, time.Date(2030, 3, 15, 9, 30, 0, 0, time.UTC), false},
		{"empty", `""`, time.Time{}, false},
		{"null", `null`, time.Time{}, false},
		{"garbage", `"next tuesday"`, time.Time{}, true},
		{"number", `20300315`, time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			err := json.Unmarshal([]byte(tt.in), &d)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(d.Time), "got %v", d.Time)
		})
	}
}

func TestDate_InStruct(t *testing.T) {
	var body struct {
		Date Date `json:"date"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2030-03-15"}`), &body))
	assert.Equal(t, 15, body.Date.Day())
}
