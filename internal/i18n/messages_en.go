package i18n

import "golang.org/x/text/message"

func init() {
	lang := English

	message.SetString(lang, KeySiteTitle, "Device Management Platform")
	message.SetString(lang, KeyRouteDash, "Dashboard")
	message.SetString(lang, KeyRouteDevices, "Device Management")
	message.SetString(lang, KeyRouteMQTT, "MQTT Control")
	message.SetString(lang, KeyRequestFailed, "Request failed, please check the network or contact the administrator")

	message.SetString(lang, KeyDashDevices, "Devices")
	message.SetString(lang, KeyDashOnline, "Online")
	message.SetString(lang, KeyDashOffline, "Offline")
	message.SetString(lang, KeyDashMessages, "Recent messages")
	message.SetString(lang, KeyDashAudit, "Recent operations")
	message.SetString(lang, KeyDashNoData, "No data")
	message.SetString(lang, KeyAuditAction, "Action")
	message.SetString(lang, KeyAuditEntity, "Target")
	message.SetString(lang, KeyAuditOutcome, "Outcome")
	message.SetString(lang, KeyAuditTime, "Time")

	message.SetString(lang, KeyDeviceID, "Device ID")
	message.SetString(lang, KeyDeviceName, "Name")
	message.SetString(lang, KeyDeviceType, "Type")
	message.SetString(lang, KeyDeviceStatus, "Status")
	message.SetString(lang, KeyDeviceActions, "Actions")
	message.SetString(lang, KeyDeviceEmpty, "No devices")
	message.SetString(lang, KeyDeviceAdd, "Register device")
	message.SetString(lang, KeyDeviceSave, "Save")
	message.SetString(lang, KeyDeviceDelete, "Delete")
	message.SetString(lang, KeyDeviceOn, "Turn on")
	message.SetString(lang, KeyDeviceOff, "Turn off")

	message.SetString(lang, KeyMQTTTopic, "Topic")
	message.SetString(lang, KeyMQTTMessage, "Message")
	message.SetString(lang, KeyMQTTPublish, "Publish")
	message.SetString(lang, KeyMQTTRecent, "Live messages")
	message.SetString(lang, KeyMQTTEmpty, "No messages yet")
	message.SetString(lang, KeyMQTTReceived, "Received")
	message.SetString(lang, KeyMQTTDevice, "Device")
	message.SetString(lang, KeyMQTTPayload, "Payload")
	message.SetString(lang, KeyLiveOffline, "Live connection lost, reconnecting")

	message.SetString(lang, KeyActionDone, "Done")
	message.SetString(lang, KeyFormInvalid, "Invalid form: %s")
	message.SetString(lang, KeyLanguage, "Language")
}
