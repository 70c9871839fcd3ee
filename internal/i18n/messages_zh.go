package i18n

import "golang.org/x/text/message"

func init() {
	lang := Chinese

	message.SetString(lang, KeySiteTitle, "设备管理平台")
	message.SetString(lang, KeyRouteDash, "仪表盘")
	message.SetString(lang, KeyRouteDevices, "设备管理")
	message.SetString(lang, KeyRouteMQTT, "MQTT 控制")
	message.SetString(lang, KeyRequestFailed, "请求失败，请检查网络或联系管理员")

	message.SetString(lang, KeyDashDevices, "设备总数")
	message.SetString(lang, KeyDashOnline, "在线")
	message.SetString(lang, KeyDashOffline, "离线")
	message.SetString(lang, KeyDashMessages, "最近消息")
	message.SetString(lang, KeyDashAudit, "最近操作")
	message.SetString(lang, KeyDashNoData, "暂无数据")
	message.SetString(lang, KeyAuditAction, "操作")
	message.SetString(lang, KeyAuditEntity, "对象")
	message.SetString(lang, KeyAuditOutcome, "结果")
	message.SetString(lang, KeyAuditTime, "时间")

	message.SetString(lang, KeyDeviceID, "设备 ID")
	message.SetString(lang, KeyDeviceName, "设备名称")
	message.SetString(lang, KeyDeviceType, "设备类型")
	message.SetString(lang, KeyDeviceStatus, "状态")
	message.SetString(lang, KeyDeviceActions, "操作")
	message.SetString(lang, KeyDeviceEmpty, "暂无设备")
	message.SetString(lang, KeyDeviceAdd, "注册设备")
	message.SetString(lang, KeyDeviceSave, "保存")
	message.SetString(lang, KeyDeviceDelete, "删除")
	message.SetString(lang, KeyDeviceOn, "开启")
	message.SetString(lang, KeyDeviceOff, "关闭")

	message.SetString(lang, KeyMQTTTopic, "主题")
	message.SetString(lang, KeyMQTTMessage, "消息内容")
	message.SetString(lang, KeyMQTTPublish, "发布")
	message.SetString(lang, KeyMQTTRecent, "实时消息")
	message.SetString(lang, KeyMQTTEmpty, "暂无消息")
	message.SetString(lang, KeyMQTTReceived, "接收时间")
	message.SetString(lang, KeyMQTTDevice, "设备")
	message.SetString(lang, KeyMQTTPayload, "内容")
	message.SetString(lang, KeyLiveOffline, "实时连接已断开，正在重连")

	message.SetString(lang, KeyActionDone, "操作成功")
	message.SetString(lang, KeyFormInvalid, "表单内容无效：%s")
	message.SetString(lang, KeyLanguage, "语言")
}
