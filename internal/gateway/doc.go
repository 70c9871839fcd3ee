// Package gateway is the single client for the remote device backend.
//
// Every device and MQTT operation the dashboard performs goes through one
// Client method, which issues exactly one HTTP request against the
// configured base URL with JSON content negotiation. No retries, no
// per-call timeouts; cancellation comes from the caller's context.
//
// # Failures
//
// Network errors and non-2xx responses pass through one interceptor that
//
//  1. resolves a display message from the response body ("error", then
//     "message"), the transport error text, or the localized fallback
//  2. logs "API Error" at error level
//  3. shows the message once through the injected notify.Notifier
//     ("error" kind, five seconds by default)
//  4. returns a *RequestError describing the failure
//
// Callers match failures with errors.As:
//
//	resp, err := client.ListDevices(ctx)
//	var reqErr *gateway.RequestError
//	if errors.As(err, &reqErr) {
//	    // already shown to the user; reqErr.StatusCode, reqErr.Message
//	}
//
// Successful calls return the raw *Response unmodified; DecodeDevices and
// DecodeDevice interpret the body when the caller needs typed data.
package gateway
