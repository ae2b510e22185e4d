package garmin

import (
	"encoding/json"
	"fmt"
	"time"
)

// Metric descriptor keys used in activity detail documents.
// Each descriptor maps one of these keys to a column index in the
// per-sample metrics arrays.
const (
	MetricTimestamp       = "directTimestamp"
	MetricHeartRate       = "directHeartRate"
	MetricSpeed           = "directSpeed"
	MetricElevation       = "directElevation"
	MetricCadence         = "directCadence"
	MetricPower           = "directPower"
	MetricRespirationRate = "directRespirationRate"
	MetricStrideLength    = "directStrideLength"
	MetricLatitude        = "directLatitude"
	MetricLongitude       = "directLongitude"
)

// startTimeLayout is the local-time format used in summary documents.
const startTimeLayout = "2006-01-02 15:04:05"

// Summary is the parsed view of an activity summary document.
// Only the fields the application reasons about are decoded; the full
// document is kept as raw JSON in the store.
type Summary struct {
	ActivityID     int64        `json:"activityId"`
	ActivityName   string       `json:"activityName"`
	ActivityType   ActivityType `json:"activityType"`
	StartTimeLocal string       `json:"startTimeLocal"`
	Duration       float64      `json:"duration"` // seconds
	Distance       float64      `json:"distance"` // meters
	Calories       float64      `json:"calories"`
	AverageHR      float64      `json:"averageHR"`
}

// ActivityType is the nested type object on a summary document.
type ActivityType struct {
	TypeID  int64  `json:"typeId"`
	TypeKey string `json:"typeKey"`
}

// StartTime parses the local start time of the summary.
func (s *Summary) StartTime() (time.Time, error) {
	t, err := time.Parse(startTimeLayout, s.StartTimeLocal)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing start time %q: %w", s.StartTimeLocal, err)
	}
	return t, nil
}

// ParseSummary decodes a raw summary document.
func ParseSummary(raw []byte) (*Summary, error) {
	var s Summary
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decoding summary document: %w", err)
	}
	if s.ActivityID == 0 {
		return nil, fmt.Errorf("summary document has no activityId")
	}
	return &s, nil
}

// Details is the parsed view of an activity details document: a list of
// metric descriptors naming the columns, and one metrics array per sample.
type Details struct {
	ActivityID            int64              `json:"activityId"`
	MetricDescriptors     []MetricDescriptor `json:"metricDescriptors"`
	ActivityDetailMetrics []MetricSample     `json:"activityDetailMetrics"`
}

// MetricDescriptor maps a metric key to its column in the sample arrays.
type MetricDescriptor struct {
	MetricsIndex int    `json:"metricsIndex"`
	Key          string `json:"key"`
}

// MetricSample is one measurement row. Entries are pointers because the
// platform emits null for sensors that produced no reading at that instant.
type MetricSample struct {
	Metrics []*float64 `json:"metrics"`
}

// ParseDetails decodes a raw details document.
func ParseDetails(raw []byte) (*Details, error) {
	var d Details
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decoding details document: %w", err)
	}
	return &d, nil
}

// ColumnIndex returns the metrics-array column for a descriptor key,
// or -1 if the document carries no such descriptor.
func (d *Details) ColumnIndex(key string) int {
	for _, md := range d.MetricDescriptors {
		if md.Key == key {
			return md.MetricsIndex
		}
	}
	return -1
}

// Column extracts one metric column across all samples. Samples whose
// row is too short for the column yield nil entries. Returns nil if the
// key has no descriptor.
func (d *Details) Column(key string) []*float64 {
	idx := d.ColumnIndex(key)
	if idx < 0 {
		return nil
	}
	out := make([]*float64, len(d.ActivityDetailMetrics))
	for i, sample := range d.ActivityDetailMetrics {
		if idx < len(sample.Metrics) {
			out[i] = sample.Metrics[idx]
		}
	}
	return out
}
