package garmin

import (
	"testing"
	"time"
)

func TestParseSummary(t *testing.T) {
	raw := []byte(`{
		"activityId": 123456,
		"activityName": "Morning Run",
		"activityType": {"typeId": 1, "typeKey": "running"},
		"startTimeLocal": "2026-03-01 08:15:00",
		"duration": 1800.5,
		"distance": 5000,
		"calories": 350,
		"averageHR": 152,
		"unmodeledField": {"nested": true}
	}`)

	s, err := ParseSummary(raw)
	if err != nil {
		t.Fatalf("ParseSummary: %v", err)
	}
	if s.ActivityID != 123456 {
		t.Errorf("ActivityID = %d", s.ActivityID)
	}
	if s.ActivityType.TypeKey != "running" {
		t.Errorf("TypeKey = %q", s.ActivityType.TypeKey)
	}

	start, err := s.StartTime()
	if err != nil {
		t.Fatalf("StartTime: %v", err)
	}
	want := time.Date(2026, 3, 1, 8, 15, 0, 0, time.UTC)
	if !start.Equal(want) {
		t.Errorf("start = %v, want %v", start, want)
	}
}

func TestParseSummary_MissingID(t *testing.T) {
	if _, err := ParseSummary([]byte(`{"activityName":"x"}`)); err == nil {
		t.Error("expected error for document without activityId")
	}
}

func TestDetailsColumn(t *testing.T) {
	raw := []byte(`{
		"activityId": 9,
		"metricDescriptors": [
			{"metricsIndex": 0, "key": "directTimestamp"},
			{"metricsIndex": 2, "key": "directHeartRate"}
		],
		"activityDetailMetrics": [
			{"metrics": [1000, 5.2, 140]},
			{"metrics": [2000, 5.1, null]},
			{"metrics": [3000]}
		]
	}`)

	d, err := ParseDetails(raw)
	if err != nil {
		t.Fatalf("ParseDetails: %v", err)
	}

	hr := d.Column(MetricHeartRate)
	if len(hr) != 3 {
		t.Fatalf("heart rate column length = %d, want 3", len(hr))
	}
	if hr[0] == nil || *hr[0] != 140 {
		t.Errorf("hr[0] = %v, want 140", hr[0])
	}
	if hr[1] != nil {
		t.Errorf("hr[1] = %v, want nil for null reading", *hr[1])
	}
	if hr[2] != nil {
		t.Error("hr[2] should be nil when the sample row is short")
	}

	// A key with no descriptor yields no column at all.
	if col := d.Column(MetricPower); col != nil {
		t.Errorf("power column = %v, want nil", col)
	}
}
