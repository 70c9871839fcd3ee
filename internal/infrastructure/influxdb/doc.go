// Package influxdb provides the optional InfluxDB telemetry sink for devicedash.
//
// When enabled, the live MQTT feed writes numeric fields from device reports
// and every device status change as points, so device history can be charted
// outside the dashboard.
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteDeviceReport("lamp-1", map[string]any{"temperature": 21.5}, time.Now())
//
// Writes are non-blocking and batched according to batch_size and
// flush_interval. Async write failures are delivered to the SetOnError callback.
package influxdb
