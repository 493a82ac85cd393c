package nanoleaf

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/hearth/internal/device"
)

func TestRGBToHSB(t *testing.T) {
	tests := []struct {
		color         string
		hue, sat, bri int
	}{
		{"#FF0000", 0, 100, 100},
		{"#00FF00", 120, 100, 100},
		{"#0000FF", 240, 100, 100},
		{"#FFFFFF", 0, 0, 100},
		{"#000000", 0, 0, 0},
		{"#808080", 0, 0, 50},
	}

	for _, tt := range tests {
		t.Run(tt.color, func(t *testing.T) {
			hue, sat, bri, err := rgbToHSB(tt.color)
			if err != nil {
				t.Fatalf("rgbToHSB failed: %v", err)
			}
			if hue != tt.hue || sat != tt.sat || bri != tt.bri {
				t.Errorf("rgbToHSB = %d/%d/%d, want %d/%d/%d", hue, sat, bri, tt.hue, tt.sat, tt.bri)
			}
		})
	}

	if _, _, _, err := rgbToHSB("FF0000"); !errors.Is(err, device.ErrValidation) {
		t.Errorf("missing # = %v, want ErrValidation", err)
	}
}

// fakePanel emulates the panel REST API surface the adapter uses.
type fakePanel struct {
	mu sync.Mutex

	on         bool
	brightness int
	lastState  map[string]map[string]any

	token        string
	infoRequests int
}

func (f *fakePanel) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		if !strings.HasPrefix(r.URL.Path, "/api/v1/"+f.token) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		switch {
		case r.Method == http.MethodGet:
			f.infoRequests++
			fmt.Fprintf(w,
				`{"name":"Hall Panels","model":"NL22","firmwareVersion":"3.3.3","state":{"on":{"value":%t},"brightness":{"value":%d,"max":100,"min":0},"colorMode":"hs"},"effects":{"select":"Northern Lights"}}`,
				f.on, f.brightness)

		case r.Method == http.MethodPut && strings.HasSuffix(r.URL.Path, "/state"):
			body := map[string]map[string]any{}
			json.NewDecoder(r.Body).Decode(&body)
			f.lastState = body
			if on, ok := body["on"]; ok {
				f.on, _ = on["value"].(bool)
			}
			if bri, ok := body["brightness"]; ok {
				if v, ok := bri["value"].(float64); ok {
					f.brightness = int(v)
				}
			}
			w.WriteHeader(http.StatusNoContent)

		default:
			http.NotFound(w, r)
		}
	})
}

func newTestPanel(t *testing.T, fake *fakePanel) *Panel {
	t.Helper()

	if fake.token == "" {
		fake.token = "sekrit"
	}
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	p, err := New(Config{
		Address: strings.TrimPrefix(srv.URL, "http://"),
		Token:   fake.token,
		Timeout: 2 * time.Second,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return p
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"blank address", Config{Address: " ", Token: "t"}},
		{"blank token", Config{Address: "panel.local", Token: "  "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cfg); !errors.Is(err, device.ErrValidation) {
				t.Errorf("New error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestPowerRoundTrip(t *testing.T) {
	fake := &fakePanel{brightness: 75}
	p := newTestPanel(t, fake)
	ctx := context.Background()

	if err := p.TurnOn(ctx); err != nil {
		t.Fatalf("TurnOn failed: %v", err)
	}
	on, err := p.IsOn(ctx)
	if err != nil {
		t.Fatalf("IsOn failed: %v", err)
	}
	if !on {
		t.Error("IsOn = false after TurnOn")
	}

	status, err := p.Status(ctx)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if !status.On || status.Brand != device.BrandNanoleaf || status.DeviceType != device.DeviceTypeLight {
		t.Errorf("status = %+v, want on nanoleaf light", status)
	}
	if status.Attrs[device.AttrName] != "Hall Panels" {
		t.Errorf("name attr = %v, want Hall Panels", status.Attrs[device.AttrName])
	}
	if status.Attrs[device.AttrBrightness] != 75 {
		t.Errorf("brightness attr = %v, want 75", status.Attrs[device.AttrBrightness])
	}
	if status.Attrs[device.AttrEffect] != "Northern Lights" {
		t.Errorf("effect attr = %v, want Northern Lights", status.Attrs[device.AttrEffect])
	}

	if err := p.TurnOff(ctx); err != nil {
		t.Fatalf("TurnOff failed: %v", err)
	}
	on, err = p.IsOn(ctx)
	if err != nil {
		t.Fatalf("IsOn failed: %v", err)
	}
	if on {
		t.Error("IsOn = true after TurnOff")
	}
}

func TestProbeRunsOnce(t *testing.T) {
	fake := &fakePanel{}
	p := newTestPanel(t, fake)
	ctx := context.Background()

	if err := p.TurnOn(ctx); err != nil {
		t.Fatalf("TurnOn failed: %v", err)
	}
	if err := p.TurnOff(ctx); err != nil {
		t.Fatalf("TurnOff failed: %v", err)
	}

	fake.mu.Lock()
	defer fake.mu.Unlock()
	if fake.infoRequests != 1 {
		t.Errorf("probe fetched info %d times across two writes, want 1", fake.infoRequests)
	}
}

func TestSetBrightness(t *testing.T) {
	fake := &fakePanel{}
	p := newTestPanel(t, fake)
	ctx := context.Background()

	if err := p.SetBrightness(ctx, 60); err != nil {
		t.Fatalf("SetBrightness failed: %v", err)
	}
	fake.mu.Lock()
	if fake.brightness != 60 {
		t.Errorf("panel brightness = %d, want 60", fake.brightness)
	}
	fake.mu.Unlock()

	for _, level := range []int{-1, 101} {
		if err := p.SetBrightness(ctx, level); !errors.Is(err, device.ErrValidation) {
			t.Errorf("SetBrightness(%d) = %v, want ErrValidation", level, err)
		}
	}
}

func TestSetColor(t *testing.T) {
	fake := &fakePanel{}
	p := newTestPanel(t, fake)
	ctx := context.Background()

	if err := p.SetColor(ctx, "#00FF00"); err != nil {
		t.Fatalf("SetColor failed: %v", err)
	}

	fake.mu.Lock()
	body := fake.lastState
	fake.mu.Unlock()
	if body["hue"]["value"].(float64) != 120 {
		t.Errorf("hue = %v, want 120", body["hue"]["value"])
	}
	if body["sat"]["value"].(float64) != 100 {
		t.Errorf("sat = %v, want 100", body["sat"]["value"])
	}
	if body["brightness"]["value"].(float64) != 100 {
		t.Errorf("brightness = %v, want 100", body["brightness"]["value"])
	}

	if err := p.SetColor(ctx, "#12345"); !errors.Is(err, device.ErrValidation) {
		t.Errorf("SetColor with short string = %v, want ErrValidation", err)
	}
}

func TestBadTokenReportsPairingGuidance(t *testing.T) {
	fake := &fakePanel{token: "expected"}
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	p, err := New(Config{
		Address: strings.TrimPrefix(srv.URL, "http://"),
		Token:   "stale",
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	err = p.TurnOn(context.Background())
	if !errors.Is(err, device.ErrConnection) {
		t.Fatalf("TurnOn with bad token = %v, want ErrConnection", err)
	}
	if !strings.Contains(err.Error(), "power button") {
		t.Errorf("error %q should carry pairing guidance", err)
	}
}

func TestConnectionFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	p, err := New(Config{Address: addr, Token: "t", Timeout: time.Second})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := p.TurnOn(context.Background()); !errors.Is(err, device.ErrConnection) {
		t.Errorf("TurnOn against dead port = %v, want ErrConnection", err)
	}
	if _, err := p.IsOn(context.Background()); !errors.Is(err, device.ErrConnection) {
		t.Errorf("IsOn against dead port = %v, want ErrConnection", err)
	}
}
