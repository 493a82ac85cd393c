package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nerrad567/hearth/internal/adapters/kasa"
	"github.com/nerrad567/hearth/internal/device"
	"github.com/nerrad567/hearth/internal/infrastructure/config"
	"github.com/nerrad567/hearth/internal/infrastructure/logging"
)

// fakeDevice is a scriptable device for handler tests.
type fakeDevice struct {
	brand      device.Brand
	deviceType device.DeviceType

	on         bool
	brightness int
	color      string
	err        error
}

func (f *fakeDevice) TurnOn(context.Context) error {
	if f.err != nil {
		return f.err
	}
	f.on = true
	return nil
}

func (f *fakeDevice) TurnOff(context.Context) error {
	if f.err != nil {
		return f.err
	}
	f.on = false
	return nil
}

func (f *fakeDevice) IsOn(context.Context) (bool, error) {
	return f.on, f.err
}

func (f *fakeDevice) Status(context.Context) (*device.Status, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &device.Status{
		On:         f.on,
		DeviceType: f.deviceType,
		Brand:      f.brand,
		Attrs:      map[string]any{device.AttrBrightness: f.brightness},
	}, nil
}

func (f *fakeDevice) SetBrightness(_ context.Context, level int) error {
	if f.err != nil {
		return f.err
	}
	if err := device.ValidateBrightness(level); err != nil {
		return err
	}
	f.brightness = level
	return nil
}

func (f *fakeDevice) SetColor(_ context.Context, color string) error {
	if f.err != nil {
		return f.err
	}
	f.color = color
	return nil
}

func (f *fakeDevice) DeviceTypeTag() device.DeviceType { return f.deviceType }
func (f *fakeDevice) BrandTag() device.Brand           { return f.brand }

// fakePlug adds the schedule surface on top of fakeDevice.
type fakePlug struct {
	fakeDevice
	rules   []kasa.Rule
	enabled bool
}

func (f *fakePlug) Schedule(context.Context) (*kasa.ScheduleState, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &kasa.ScheduleState{Rules: f.rules, Enabled: f.enabled}, nil
}

func (f *fakePlug) AddScheduleRule(_ context.Context, rule kasa.Rule) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	rule.ID = fmt.Sprintf("rule-%d", len(f.rules)+1)
	f.rules = append(f.rules, rule)
	return rule.ID, nil
}

func (f *fakePlug) DeleteScheduleRule(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	for i, r := range f.rules {
		if r.ID == id {
			f.rules = append(f.rules[:i], f.rules[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: no such rule %s", device.ErrOperation, id)
}

func (f *fakePlug) SetScheduleEnabled(_ context.Context, enabled bool) error {
	if f.err != nil {
		return f.err
	}
	f.enabled = enabled
	return nil
}

func newTestServer(t *testing.T) (*Server, *device.Registry) {
	t.Helper()

	registry := device.NewRegistry()
	s, err := New(Deps{
		Config:   config.APIConfig{Host: "127.0.0.1", Port: 8086},
		Logger:   logging.Default(),
		Registry: registry,
		Version:  "test",
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s, registry
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}

	rec := httptest.NewRecorder()
	s.buildRouter().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v: %s", err, rec.Body.String())
	}
	return body
}

func TestNew_RequiresDeps(t *testing.T) {
	if _, err := New(Deps{Registry: device.NewRegistry()}); err == nil {
		t.Error("New without logger should fail")
	}
	if _, err := New(Deps{Logger: logging.Default()}); err == nil {
		t.Error("New without registry should fail")
	}
}

func TestHandleHealth(t *testing.T) {
	s, registry := newTestServer(t)
	registry.Register("porch", &fakeDevice{brand: device.BrandTPLink, deviceType: device.DeviceTypePlug})

	rec := doRequest(t, s, http.MethodGet, "/api/v1/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d, want 200", rec.Code)
	}

	body := decodeBody(t, rec)
	if body["status"] != "ok" || body["devices"] != float64(1) {
		t.Errorf("health body = %v", body)
	}
}

func TestHandleListDevices(t *testing.T) {
	s, registry := newTestServer(t)
	registry.Register("porch", &fakeDevice{brand: device.BrandTPLink, deviceType: device.DeviceTypePlug})
	registry.Register("study", &fakeDevice{brand: device.BrandHue, deviceType: device.DeviceTypeLight})

	rec := doRequest(t, s, http.MethodGet, "/api/v1/devices/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", rec.Code)
	}

	body := decodeBody(t, rec)
	if body["count"] != float64(2) {
		t.Errorf("count = %v, want 2", body["count"])
	}
	devices := body["devices"].([]any)
	first := devices[0].(map[string]any)
	if first["name"] != "porch" || first["brand"] != "tplink" {
		t.Errorf("first entry = %v, want porch/tplink (sorted)", first)
	}
}

func TestPowerEndpoints(t *testing.T) {
	s, registry := newTestServer(t)
	fake := &fakeDevice{brand: device.BrandNanoleaf, deviceType: device.DeviceTypeLight}
	registry.Register("hall", fake)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/devices/hall/on", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("on status = %d, want 200", rec.Code)
	}
	if !fake.on {
		t.Error("device not switched on")
	}

	rec = doRequest(t, s, http.MethodGet, "/api/v1/devices/hall/state", "")
	if body := decodeBody(t, rec); body["is_on"] != true {
		t.Errorf("state body = %v, want is_on true", body)
	}

	rec = doRequest(t, s, http.MethodPost, "/api/v1/devices/hall/off", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("off status = %d, want 200", rec.Code)
	}
	if fake.on {
		t.Error("device not switched off")
	}
}

func TestHandleToggle(t *testing.T) {
	s, registry := newTestServer(t)
	fake := &fakeDevice{brand: device.BrandNanoleaf, deviceType: device.DeviceTypeLight, on: true}
	registry.Register("hall", fake)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/devices/hall/toggle", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle status = %d, want 200", rec.Code)
	}
	if fake.on {
		t.Error("device still on after toggle")
	}
	if body := decodeBody(t, rec); body["is_on"] != false {
		t.Errorf("toggle body = %v, want is_on false", body)
	}

	rec = doRequest(t, s, http.MethodPost, "/api/v1/devices/hall/toggle", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("second toggle status = %d, want 200", rec.Code)
	}
	if !fake.on {
		t.Error("device still off after second toggle")
	}
}

func TestHandleGetStatus(t *testing.T) {
	s, registry := newTestServer(t)
	registry.Register("hall", &fakeDevice{
		brand: device.BrandNanoleaf, deviceType: device.DeviceTypeLight,
		on: true, brightness: 80,
	})

	rec := doRequest(t, s, http.MethodGet, "/api/v1/devices/hall/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	body := decodeBody(t, rec)
	status := body["status"].(map[string]any)
	if status["is_on"] != true || status["brand"] != "nanoleaf" {
		t.Errorf("status body = %v", status)
	}
}

func TestUnknownDeviceIs404(t *testing.T) {
	s, _ := newTestServer(t)

	for _, path := range []string{
		"/api/v1/devices/ghost/",
		"/api/v1/devices/ghost/state",
		"/api/v1/devices/ghost/on",
	} {
		method := http.MethodGet
		if strings.HasSuffix(path, "/on") {
			method = http.MethodPost
		}
		rec := doRequest(t, s, method, path, "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s status = %d, want 404", path, rec.Code)
		}
	}
}

func TestUnknownDeviceListsAvailableNames(t *testing.T) {
	s, registry := newTestServer(t)
	registry.Register("porch", &fakeDevice{brand: device.BrandTPLink, deviceType: device.DeviceTypePlug})

	rec := doRequest(t, s, http.MethodGet, "/api/v1/devices/ghost/state", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if msg := decodeBody(t, rec)["message"].(string); !strings.Contains(msg, "porch") {
		t.Errorf("message %q should name available devices", msg)
	}
}

func TestErrorKindToStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", fmt.Errorf("%w: bad level", device.ErrValidation), http.StatusBadRequest},
		{"not supported", fmt.Errorf("%w: no dimmer", device.ErrNotSupported), http.StatusNotImplemented},
		{"connection", fmt.Errorf("%w: dial tcp", device.ErrConnection), http.StatusServiceUnavailable},
		{"operation", fmt.Errorf("%w: err_code -3", device.ErrOperation), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, registry := newTestServer(t)
			registry.Register("porch", &fakeDevice{
				brand: device.BrandTPLink, deviceType: device.DeviceTypePlug, err: tt.err,
			})

			rec := doRequest(t, s, http.MethodPost, "/api/v1/devices/porch/on", "")
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestHandleSetBrightness(t *testing.T) {
	s, registry := newTestServer(t)
	fake := &fakeDevice{brand: device.BrandHue, deviceType: device.DeviceTypeLight}
	registry.Register("study", fake)

	rec := doRequest(t, s, http.MethodPut, "/api/v1/devices/study/brightness", `{"level": 70}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if fake.brightness != 70 {
		t.Errorf("brightness = %d, want 70", fake.brightness)
	}

	rec = doRequest(t, s, http.MethodPut, "/api/v1/devices/study/brightness", `{"level": 200}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("out-of-range status = %d, want 400", rec.Code)
	}

	for _, body := range []string{"", "{}", "not json"} {
		rec = doRequest(t, s, http.MethodPut, "/api/v1/devices/study/brightness", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q status = %d, want 400", body, rec.Code)
		}
	}
}

func TestHandleSetColor(t *testing.T) {
	s, registry := newTestServer(t)
	fake := &fakeDevice{brand: device.BrandHue, deviceType: device.DeviceTypeLight}
	registry.Register("study", fake)

	rec := doRequest(t, s, http.MethodPut, "/api/v1/devices/study/color", `{"color": "#00FF00"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if fake.color != "#00FF00" {
		t.Errorf("color = %q, want #00FF00", fake.color)
	}

	rec = doRequest(t, s, http.MethodPut, "/api/v1/devices/study/color", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty body status = %d, want 400", rec.Code)
	}
}

func TestScheduleEndpoints(t *testing.T) {
	s, registry := newTestServer(t)
	plug := &fakePlug{
		fakeDevice: fakeDevice{brand: device.BrandTPLink, deviceType: device.DeviceTypePlug},
		enabled:    true,
	}
	registry.Register("porch", plug)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/devices/porch/schedule/", `{"name":"evening","sact":1,"smin":1080}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	id := decodeBody(t, rec)["id"].(string)

	rec = doRequest(t, s, http.MethodGet, "/api/v1/devices/porch/schedule/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d, want 200", rec.Code)
	}
	sched := decodeBody(t, rec)["schedule"].(map[string]any)
	if rules := sched["rules"].([]any); len(rules) != 1 {
		t.Errorf("rules = %v, want one", rules)
	}

	rec = doRequest(t, s, http.MethodPut, "/api/v1/devices/porch/schedule/enabled", `{"enabled": false}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("enable status = %d, want 200", rec.Code)
	}
	if plug.enabled {
		t.Error("schedule still enabled")
	}

	rec = doRequest(t, s, http.MethodDelete, "/api/v1/devices/porch/schedule/"+id, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d, want 200", rec.Code)
	}
	if len(plug.rules) != 0 {
		t.Errorf("rules remain after delete: %v", plug.rules)
	}

	rec = doRequest(t, s, http.MethodDelete, "/api/v1/devices/porch/schedule/"+id, "")
	if rec.Code != http.StatusBadGateway {
		t.Errorf("double delete status = %d, want 502", rec.Code)
	}
}

func TestScheduleOnPlainDeviceIs501(t *testing.T) {
	s, registry := newTestServer(t)
	registry.Register("study", &fakeDevice{brand: device.BrandHue, deviceType: device.DeviceTypeLight})

	rec := doRequest(t, s, http.MethodGet, "/api/v1/devices/study/schedule/", "")
	if rec.Code != http.StatusNotImplemented {
		t.Errorf("status = %d, want 501", rec.Code)
	}
}
