// Package feed relays live MQTT traffic to the MQTT control page.
//
// When MQTT is enabled the dashboard subscribes to test/topic,
// device/report/# and device/status/# itself. Each received message is
//
//   - classified (report, status, other) and tagged with the device ID
//     from the third topic segment, or "unknown"
//   - appended to the mqtt_messages log, pruned to the newest N rows
//   - broadcast to browsers on the "mqtt.message" WebSocket channel
//   - written to InfluxDB (report numeric fields, status transitions)
//
// Payloads that are not valid JSON are still stored and broadcast raw.
package feed
