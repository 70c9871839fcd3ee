package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Command values accepted by the backend.
type Command string

const (
	CommandOn  Command = "ON"
	CommandOff Command = "OFF"
)

// ParseCommand accepts "ON" or "OFF", case-sensitively.
func ParseCommand(s string) (Command, bool) {
	switch Command(s) {
	case CommandOn, CommandOff:
		return Command(s), true
	default:
		return "", false
	}
}

// DeviceID is the backend's device identifier. The backend issues numeric
// IDs; string IDs are accepted too.
type DeviceID string

// UnmarshalJSON accepts a JSON number or string.
func (id *DeviceID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = DeviceID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("device id: %w", err)
	}
	*id = DeviceID(n.String())
	return nil
}

// MarshalJSON writes numeric IDs as numbers and everything else as strings.
func (id DeviceID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// Device is the backend's device record.
type Device struct {
	ID         DeviceID `json:"id,omitempty"`
	DeviceName string   `json:"deviceName"`
	DeviceType string   `json:"deviceType"`
	Status     string   `json:"status"`
}

// DecodeDevices interprets a list devices response.
func DecodeDevices(resp *Response) ([]Device, error) {
	var devices []Device
	if err := resp.JSON(&devices); err != nil {
		return nil, err
	}
	if devices == nil {
		devices = []Device{}
	}
	return devices, nil
}

// DecodeDevice interprets a single-device response.
func DecodeDevice(resp *Response) (*Device, error) {
	var d Device
	if err := resp.JSON(&d); err != nil {
		return nil, err
	}
	return &d, nil
}
