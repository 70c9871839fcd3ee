package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names written by the feed.
const (
	MeasurementDeviceReport = "device_report"
	MeasurementDeviceStatus = "device_status"
)

// WriteDeviceReport writes the numeric and boolean fields of a device report.
//
// Non-numeric fields are dropped; a report with nothing left is not written.
// The write is non-blocking.
//
// Parameters:
//   - deviceID: Device identifier taken from the report topic
//   - fields: Decoded report payload
//   - ts: Time the report was received
//
// Returns:
//   - bool: true if a point was queued
func (c *Client) WriteDeviceReport(deviceID string, fields map[string]any, ts time.Time) bool {
	if !c.IsConnected() {
		return false
	}

	numeric := NumericFields(fields)
	if len(numeric) == 0 {
		return false
	}

	c.writeAPI.WritePoint(write.NewPoint(
		MeasurementDeviceReport,
		map[string]string{"device_id": deviceID},
		numeric,
		ts,
	))
	return true
}

// WriteDeviceStatus records a status transition such as "online" or "offline".
func (c *Client) WriteDeviceStatus(deviceID, status string, ts time.Time) {
	if !c.IsConnected() {
		return
	}

	online := 0
	if status == "online" {
		online = 1
	}

	c.writeAPI.WritePoint(write.NewPoint(
		MeasurementDeviceStatus,
		map[string]string{"device_id": deviceID},
		map[string]any{"status": status, "online": online},
		ts,
	))
}

// NumericFields keeps the float, integer, and boolean values of fields.
// JSON numbers decode as float64, so that is the common case.
func NumericFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		switch v.(type) {
		case float64, float32, int, int64, int32, uint, uint64, bool:
			out[k] = v
		}
	}
	return out
}
