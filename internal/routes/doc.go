// Package routes defines the dashboard's navigation: an ordered table of
// pages under one layout shell, the default redirect to the device list,
// page titles, and on-demand page loading.
//
// The table is built once at startup and never changes:
//
//	/            -> redirect to /devices
//	/dashboard   Dashboard         仪表盘
//	/devices     DeviceManagement  设备管理
//	/mqtt        MqttControl       MQTT 控制
//
// Any path without a route resolves to the redirect target. Page content is
// produced through a Resolver, which runs each page's loader once, on first
// navigation, and caches the result.
package routes
