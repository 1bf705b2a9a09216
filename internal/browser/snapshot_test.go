package browser

import (
	"errors"
	"testing"
)

func TestSnapshotCapabilities(t *testing.T) {
	var s Snapshot

	if _, ok := s.Connection(); ok {
		t.Error("zero snapshot should not report network information")
	}
	if _, supported := s.PrefersDark(); supported {
		t.Error("zero snapshot should not support matchMedia")
	}
	if s.Online() {
		t.Error("zero snapshot is offline")
	}

	s.ColorScheme = "dark"
	if matches, supported := s.PrefersDark(); !matches || !supported {
		t.Errorf("PrefersDark() = %v, %v, want true, true", matches, supported)
	}

	s.StorageErr = errors.New("SecurityError")
	if _, err := s.StorageItem("token"); err == nil {
		t.Error("expected storage error to surface")
	}
}

func TestLiveUpdateAndEmit(t *testing.T) {
	live := NewLive(Snapshot{Host: "example.com", IsOnline: true})

	var calls []string
	live.Subscribe(TriggerOffline, func() { calls = append(calls, "first") })
	live.Subscribe(TriggerOffline, func() { calls = append(calls, "second") })

	live.Update(func(s *Snapshot) { s.IsOnline = false })
	if live.Online() {
		t.Error("Update did not apply")
	}

	if n := live.Emit(TriggerOffline); n != 2 {
		t.Errorf("Emit notified %d subscribers, want 2", n)
	}
	if len(calls) != 2 || calls[0] != "first" || calls[1] != "second" {
		t.Errorf("subscribers ran out of order: %v", calls)
	}
	if n := live.Emit(TriggerOnline); n != 0 {
		t.Errorf("Emit(online) notified %d subscribers, want 0", n)
	}
	if got := live.Current().Host; got != "example.com" {
		t.Errorf("Current().Host = %q", got)
	}
}

func TestTriggers(t *testing.T) {
	if got := len(Triggers()); got != 4 {
		t.Errorf("len(Triggers()) = %d, want 4", got)
	}
}
