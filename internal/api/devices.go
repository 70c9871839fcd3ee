package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/devicedash/internal/audit"
	"github.com/nerrad567/devicedash/internal/gateway"
	"github.com/nerrad567/devicedash/internal/routes"
)

// editParam selects the device whose edit form is shown on the device page.
const editParam = "edit"

// Form field names, matching the backend's JSON keys.
const (
	fieldDeviceName = "deviceName"
	fieldDeviceType = "deviceType"
	fieldStatus     = "status"
	fieldCommand    = "command"
)

type devicesPage struct {
	Devices []gateway.Device
	Failed  bool

	// Edit is the device being edited, fetched fresh from the backend.
	Edit *gateway.Device
}

// handleDevicesPage lists devices. With ?edit={id} it also loads that device
// into the edit form.
func (s *Server) handleDevicesPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := &devicesPage{}

	resp, err := s.gateway.ListDevices(ctx)
	if err == nil {
		page.Devices, err = gateway.DecodeDevices(resp)
		if err != nil {
			s.logger.Warn("failed to decode device list", "error", err)
		}
	}
	page.Failed = err != nil

	if id := strings.TrimSpace(r.URL.Query().Get(editParam)); id != "" {
		if resp, err := s.gateway.GetDevice(ctx, id); err == nil {
			d, err := gateway.DecodeDevice(resp)
			if err != nil {
				s.logger.Warn("failed to decode device", "device_id", id, "error", err)
			} else {
				if d.ID == "" {
					d.ID = gateway.DeviceID(id)
				}
				page.Edit = d
			}
		}
	}

	s.renderPage(w, r, routes.PathDevices, page)
}

// handleRegisterDevice registers the device described by the form.
func (s *Server) handleRegisterDevice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	d, err := deviceFromForm(r)
	if err != nil {
		s.notifyInvalid(ctx, err)
		redirectBack(w, r, routes.PathDevices)
		return
	}

	resp, err := s.gateway.RegisterDevice(ctx, d)
	entityID := ""
	if err == nil {
		if created, decErr := gateway.DecodeDevice(resp); decErr == nil {
			entityID = string(created.ID)
		}
	}
	s.record(ctx, audit.ActionRegister, audit.EntityDevice, entityID, err, map[string]any{
		fieldDeviceName: d.DeviceName,
		fieldDeviceType: d.DeviceType,
	})
	if err == nil {
		s.notifyDone(ctx)
	}

	redirectBack(w, r, routes.PathDevices)
}

// handleUpdateDevice replaces the device with the form's contents.
func (s *Server) handleUpdateDevice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	d, err := deviceFromForm(r)
	if err != nil {
		s.notifyInvalid(ctx, err)
		redirectBack(w, r, routes.PathDevices+"?"+editParam+"="+url.QueryEscape(id))
		return
	}
	d.ID = gateway.DeviceID(id)

	_, err = s.gateway.UpdateDevice(ctx, id, d)
	s.record(ctx, audit.ActionUpdate, audit.EntityDevice, id, err, map[string]any{
		fieldDeviceName: d.DeviceName,
		fieldDeviceType: d.DeviceType,
		fieldStatus:     d.Status,
	})
	if err == nil {
		s.notifyDone(ctx)
	}

	redirectBack(w, r, routes.PathDevices)
}

// handleDeleteDevice removes a device.
func (s *Server) handleDeleteDevice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	_, err := s.gateway.DeleteDevice(ctx, id)
	s.record(ctx, audit.ActionDelete, audit.EntityDevice, id, err, nil)
	if err == nil {
		s.notifyDone(ctx)
	}

	redirectBack(w, r, routes.PathDevices)
}

// handleSendCommand switches a device ON or OFF.
func (s *Server) handleSendCommand(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	cmd, ok := gateway.ParseCommand(strings.ToUpper(strings.TrimSpace(r.PostFormValue(fieldCommand))))
	if !ok {
		s.notifyInvalid(ctx, errInvalidCommand)
		redirectBack(w, r, routes.PathDevices)
		return
	}

	_, err := s.gateway.SendCommand(ctx, id, cmd)
	s.record(ctx, audit.ActionCommand, audit.EntityDevice, id, err, map[string]any{
		fieldCommand: string(cmd),
	})
	if err == nil {
		s.notifyDone(ctx)
	}

	redirectBack(w, r, routes.PathDevices)
}

// deviceFromForm reads a device from a url-encoded form. Name and type are
// required; status defaults to "offline".
func deviceFromForm(r *http.Request) (gateway.Device, error) {
	if err := r.ParseForm(); err != nil {
		return gateway.Device{}, fmt.Errorf("parsing form: %w", err)
	}

	d := gateway.Device{
		DeviceName: strings.TrimSpace(r.PostForm.Get(fieldDeviceName)),
		DeviceType: strings.TrimSpace(r.PostForm.Get(fieldDeviceType)),
		Status:     strings.TrimSpace(r.PostForm.Get(fieldStatus)),
	}
	if d.DeviceName == "" {
		return d, fmt.Errorf("%w: %s", errMissingField, fieldDeviceName)
	}
	if d.DeviceType == "" {
		return d, fmt.Errorf("%w: %s", errMissingField, fieldDeviceType)
	}
	if d.Status == "" {
		d.Status = "offline"
	}
	return d, nil
}
