// Package mqtt provides MQTT client connectivity for devicedash.
//
// The dashboard listens to the same broker the backend and the devices use,
// so the MQTT control page can show messages as they arrive instead of
// polling the backend.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Topic subscriptions with wildcard support, restored after reconnect
//   - Message publishing with QoS validation
//   - Last Will and Testament (LWT) announcing the dashboard's presence
//
// # Topic layout
//
//	device/report/{deviceId}   telemetry published by devices
//	device/status/{deviceId}   online/offline status (retained, LWT)
//	device/command/{deviceId}  commands relayed by the backend
//	test/topic                 free-form test messages
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.AllDeviceReports(), 1,
//	    func(topic string, payload []byte) error {
//	        id := mqtt.DeviceIDFromTopic(topic)
//	        ...
//	        return nil
//	    })
package mqtt
