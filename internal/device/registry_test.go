package device

import (
	"context"
	"errors"
	"sync"
	"testing"
)

// fakeDevice is a minimal Device implementation for registry tests.
type fakeDevice struct {
	brand      Brand
	deviceType DeviceType
	on         bool
}

func (f *fakeDevice) TurnOn(_ context.Context) error  { f.on = true; return nil }
func (f *fakeDevice) TurnOff(_ context.Context) error { f.on = false; return nil }
func (f *fakeDevice) IsOn(_ context.Context) (bool, error) {
	return f.on, nil
}
func (f *fakeDevice) Status(_ context.Context) (*Status, error) {
	return &Status{On: f.on, DeviceType: f.deviceType, Brand: f.brand}, nil
}
func (f *fakeDevice) SetBrightness(_ context.Context, _ int) error {
	return ErrNotSupported
}
func (f *fakeDevice) SetColor(_ context.Context, _ string) error {
	return ErrNotSupported
}
func (f *fakeDevice) DeviceTypeTag() DeviceType { return f.deviceType }
func (f *fakeDevice) BrandTag() Brand           { return f.brand }

func newFakePlug() *fakeDevice {
	return &fakeDevice{brand: BrandTPLink, deviceType: DeviceTypePlug}
}

func TestRegistryRegisterAndGet(t *testing.T) {
	reg := NewRegistry()
	plug := newFakePlug()

	if err := reg.Register("porch", plug); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	got, ok := reg.Get("porch")
	if !ok {
		t.Fatal("Get returned not found for registered device")
	}
	if got != Device(plug) {
		t.Error("Get returned a different device than was registered")
	}
}

func TestRegistryRegisterValidation(t *testing.T) {
	reg := NewRegistry()

	tests := []struct {
		name    string
		devName string
		dev     Device
	}{
		{"empty name", "", newFakePlug()},
		{"blank name", "   ", newFakePlug()},
		{"nil device", "porch", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := reg.Register(tt.devName, tt.dev)
			if !errors.Is(err, ErrValidation) {
				t.Errorf("Register(%q) error = %v, want ErrValidation", tt.devName, err)
			}
		})
	}

	if reg.Len() != 0 {
		t.Errorf("registry should stay empty after failed registrations, has %d entries", reg.Len())
	}
}

func TestRegistryTrimsNames(t *testing.T) {
	reg := NewRegistry()
	plug := newFakePlug()

	if err := reg.Register("  porch  ", plug); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if _, ok := reg.Get("porch"); !ok {
		t.Error("Get(\"porch\") should find device registered as \"  porch  \"")
	}
	if _, ok := reg.Get("  porch "); !ok {
		t.Error("Get with surrounding whitespace should find the same device")
	}
}

func TestRegistryGetMissing(t *testing.T) {
	reg := NewRegistry()

	d, ok := reg.Get("missing")
	if ok {
		t.Error("Get for unknown name should report not found")
	}
	if d != nil {
		t.Error("Get for unknown name should return nil device")
	}

	// Blank names are never registrable, so they are never found.
	if _, ok := reg.Get("   "); ok {
		t.Error("Get with blank name should report not found")
	}
}

func TestRegistryOverwrite(t *testing.T) {
	reg := NewRegistry()
	first := newFakePlug()
	second := &fakeDevice{brand: BrandHue, deviceType: DeviceTypeLight}

	if err := reg.Register("lamp", first); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := reg.Register("lamp", second); err != nil {
		t.Fatalf("Register overwrite failed: %v", err)
	}

	got, _ := reg.Get("lamp")
	if got.BrandTag() != BrandHue {
		t.Errorf("Get after overwrite returned brand %q, want %q", got.BrandTag(), BrandHue)
	}
	if reg.Len() != 1 {
		t.Errorf("registry has %d entries after overwrite, want 1", reg.Len())
	}
}

func TestRegistryRemove(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register("porch", newFakePlug()); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if !reg.Remove("porch") {
		t.Error("Remove should return true for an existing entry")
	}
	if reg.Remove("porch") {
		t.Error("Remove should return false on the second call")
	}
	if reg.Remove("never-existed") {
		t.Error("Remove should return false for an unknown name")
	}
}

func TestRegistryNamesAndSummaries(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register("porch", newFakePlug()); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := reg.Register("lamp", &fakeDevice{brand: BrandHue, deviceType: DeviceTypeLight}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	names := reg.Names()
	if len(names) != 2 {
		t.Fatalf("Names returned %d entries, want 2", len(names))
	}
	seen := map[string]bool{}
	for _, n := range names {
		seen[n] = true
	}
	if !seen["porch"] || !seen["lamp"] {
		t.Errorf("Names missing expected entries: %v", names)
	}

	summaries := reg.Summaries()
	if len(summaries) != 2 {
		t.Fatalf("Summaries returned %d entries, want 2", len(summaries))
	}
	if s := summaries["porch"]; s.Brand != BrandTPLink || s.DeviceType != DeviceTypePlug {
		t.Errorf("porch summary = %+v, want tplink plug", s)
	}
	if s := summaries["lamp"]; s.Brand != BrandHue || s.DeviceType != DeviceTypeLight {
		t.Errorf("lamp summary = %+v, want hue light", s)
	}
}

func TestRegistryClear(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register("porch", newFakePlug()); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	reg.Clear()

	if reg.Len() != 0 {
		t.Errorf("registry has %d entries after Clear, want 0", reg.Len())
	}
	if reg.Has("porch") {
		t.Error("Has should report false after Clear")
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register("shared", newFakePlug()); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				reg.Get("shared")
				reg.Names()
				reg.Summaries()
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = reg.Register("shared", newFakePlug())
				reg.Has("shared")
			}
		}()
	}
	wg.Wait()

	if !reg.Has("shared") {
		t.Error("device lost during concurrent access")
	}
}
