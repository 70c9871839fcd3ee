package i18n

// Catalog keys.
const (
	KeySiteTitle     = "site.title"
	KeyRouteDash     = "route.dashboard"
	KeyRouteDevices  = "route.devices"
	KeyRouteMQTT     = "route.mqtt"
	KeyRequestFailed = "request.failed"

	KeyDashDevices   = "dashboard.devices"
	KeyDashOnline    = "dashboard.online"
	KeyDashOffline   = "dashboard.offline"
	KeyDashMessages  = "dashboard.messages"
	KeyDashAudit     = "dashboard.audit"
	KeyDashNoData    = "dashboard.no_data"
	KeyAuditAction   = "audit.action"
	KeyAuditEntity   = "audit.entity"
	KeyAuditOutcome  = "audit.outcome"
	KeyAuditTime     = "audit.time"
	KeyDeviceID      = "device.id"
	KeyDeviceName    = "device.name"
	KeyDeviceType    = "device.type"
	KeyDeviceStatus  = "device.status"
	KeyDeviceActions = "device.actions"
	KeyDeviceEmpty   = "device.empty"
	KeyDeviceAdd     = "device.register"
	KeyDeviceSave    = "device.save"
	KeyDeviceDelete  = "device.delete"
	KeyDeviceOn      = "device.command_on"
	KeyDeviceOff     = "device.command_off"
	KeyMQTTTopic     = "mqtt.topic"
	KeyMQTTMessage   = "mqtt.message"
	KeyMQTTPublish   = "mqtt.publish"
	KeyMQTTRecent    = "mqtt.recent"
	KeyMQTTEmpty     = "mqtt.empty"
	KeyMQTTReceived  = "mqtt.received"
	KeyMQTTDevice    = "mqtt.device"
	KeyMQTTPayload   = "mqtt.payload"
	KeyLiveOffline   = "live.offline"

	KeyActionDone  = "action.done"
	KeyFormInvalid = "form.invalid"
	KeyLanguage    = "site.language"
)
