package mqtt

import (
	"fmt"
	"strings"
)

// Topic prefixes shared with the backend and the devices.
const (
	TopicPrefixDevice = "device"

	// TopicPrefixDashboard namespaces the dashboard's own presence.
	TopicPrefixDashboard = "devicedash"

	// TestTopic carries free-form messages published from the MQTT control page.
	TestTopic = "test/topic"

	// UnknownDeviceID is used when a topic carries no device segment.
	UnknownDeviceID = "unknown"
)

// deviceIDSegment is the index of the device ID in device/{kind}/{id}.
const deviceIDSegment = 2

// Topics provides builders for the MQTT topic layout.
//
//	topics := mqtt.Topics{}
//	topics.DeviceReport("lamp-1") // "device/report/lamp-1"
type Topics struct{}

// DeviceReport returns the telemetry topic for a device.
func (Topics) DeviceReport(deviceID string) string {
	return fmt.Sprintf("%s/report/%s", TopicPrefixDevice, deviceID)
}

// DeviceStatus returns the online/offline status topic for a device.
func (Topics) DeviceStatus(deviceID string) string {
	return fmt.Sprintf("%s/status/%s", TopicPrefixDevice, deviceID)
}

// DeviceCommand returns the command topic for a device.
func (Topics) DeviceCommand(deviceID string) string {
	return fmt.Sprintf("%s/command/%s", TopicPrefixDevice, deviceID)
}

// DashboardStatus returns the retained presence topic for a dashboard instance.
func (Topics) DashboardStatus(clientID string) string {
	return fmt.Sprintf("%s/status/%s", TopicPrefixDashboard, clientID)
}

// AllDeviceReports matches every device telemetry topic.
func (Topics) AllDeviceReports() string {
	return TopicPrefixDevice + "/report/#"
}

// AllDeviceStatuses matches every device status topic.
func (Topics) AllDeviceStatuses() string {
	return TopicPrefixDevice + "/status/#"
}

// DeviceIDFromTopic returns the third segment of topic, or UnknownDeviceID
// when the topic has fewer than three segments or an empty third segment.
//
//	DeviceIDFromTopic("device/report/lamp-1") // "lamp-1"
//	DeviceIDFromTopic("test/topic")           // "unknown"
func DeviceIDFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) <= deviceIDSegment || parts[deviceIDSegment] == "" {
		return UnknownDeviceID
	}
	return parts[deviceIDSegment]
}

// ValidateTopic checks topic against the MQTT naming rules. Wildcards are
// allowed only when filter is true: + must fill a whole level and # must be
// the last level.
func ValidateTopic(topic string, filter bool) error {
	if topic == "" {
		return fmt.Errorf("%w: topic cannot be empty", ErrInvalidTopic)
	}
	if strings.ContainsRune(topic, 0) {
		return fmt.Errorf("%w: topic contains NUL", ErrInvalidTopic)
	}

	levels := strings.Split(topic, "/")
	for i, level := range levels {
		if !strings.ContainsAny(level, "+#") {
			continue
		}
		if !filter {
			return fmt.Errorf("%w: wildcards are not allowed in %q", ErrInvalidTopic, topic)
		}
		switch {
		case level == "+":
		case level == "#" && i == len(levels)-1:
		default:
			return fmt.Errorf("%w: misplaced wildcard in %q", ErrInvalidTopic, topic)
		}
	}
	return nil
}

// MatchTopic reports whether topic matches the subscription filter.
func MatchTopic(filter, topic string) bool {
	fl := strings.Split(filter, "/")
	tl := strings.Split(topic, "/")

	for i, f := range fl {
		if f == "#" {
			return true
		}
		if i >= len(tl) {
			return false
		}
		if f != "+" && f != tl[i] {
			return false
		}
	}
	return len(fl) == len(tl)
}
