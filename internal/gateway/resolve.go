package gateway

import (
	"bytes"
	"encoding/json"
)

// ResolveMessage picks the text shown to the user for a failed call.
//
// The order is: a non-empty "error" string in body, a non-empty "message"
// string in body, the transport text, then fallback. Bodies that are not a
// JSON object, and fields that are not strings, fall through.
func ResolveMessage(body []byte, transportText, fallback string) (string, MessageSource) {
	if fields := objectFields(body); fields != nil {
		if s, ok := stringField(fields, "error"); ok {
			return s, SourceBackendError
		}
		if s, ok := stringField(fields, "message"); ok {
			return s, SourceBackendMessage
		}
	}

	if transportText != "" {
		return transportText, SourceTransport
	}
	return fallback, SourceFallback
}

func objectFields(body []byte) map[string]json.RawMessage {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil
	}
	return fields
}

func stringField(fields map[string]json.RawMessage, name string) (string, bool) {
	raw, ok := fields[name]
	if !ok {
		return "", false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		return "", false
	}
	return s, true
}
