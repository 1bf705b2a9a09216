package browser

import "testing"

func TestParamsSnapshot(t *testing.T) {
	rtt := 50.0
	p := Params{
		URL:           "https://staging.example.com:8443/orders/17?tab=items",
		UserAgent:     "ua",
		Platform:      "Android",
		EffectiveType: "4g",
		RTT:           &rtt,
		Width:         390,
		Height:        844,
		ColorScheme:   "dark",
		Meta:          map[string]string{"user-country": "AT"},
		Storage:       map[string]string{"token": "t"},
		Cookie:        "a=1",
	}

	snap, err := p.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	loc := snap.Location()
	if loc.Host != "staging.example.com" || loc.Path != "/orders/17" || loc.Query != "?tab=items" {
		t.Errorf("Location() = %+v", loc)
	}
	if !snap.Online() {
		t.Error("params snapshot should default to online")
	}
	info, ok := snap.Connection()
	if !ok || info.EffectiveType != "4g" || info.RTT == nil || *info.RTT != 50 {
		t.Errorf("Connection() = %+v, %v", info, ok)
	}
	if vp := snap.Viewport(); vp.ClientWidth != 390 || vp.InnerHeight != 844 {
		t.Errorf("Viewport() = %+v", vp)
	}
	if v, ok := snap.Meta("user-country"); !ok || v != "AT" {
		t.Errorf("Meta() = %q, %v", v, ok)
	}
	if v, _ := snap.StorageItem("token"); v != "t" {
		t.Errorf("StorageItem() = %q", v)
	}
}

func TestParamsSnapshotDefaults(t *testing.T) {
	snap, err := Params{Offline: true}.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.Online() {
		t.Error("Offline param should be honoured")
	}
	if _, ok := snap.Connection(); ok {
		t.Error("no network params should leave the API unsupported")
	}
	if snap.Location() != (Location{}) {
		t.Errorf("empty URL should give empty location, got %+v", snap.Location())
	}
}

func TestParamsSnapshotBadURL(t *testing.T) {
	if _, err := (Params{URL: "http://[::1"}).Snapshot(); err == nil {
		t.Error("expected error for malformed url")
	}
}
