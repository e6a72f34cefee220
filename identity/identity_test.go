package identity

import (
	"context"
	"strings"
	"testing"
)

func TestDeviceIdentity(t *testing.T) {
	tests := []struct {
		in   string
		want Identity
	}{
		{"abc-123", "device:abc-123"},
		{"  abc  ", "device:abc"},
		{"pixel 8 pro", "device:pixel_8_pro"},
		{`<x>"y"`, "device:xy"},
		{"", Anonymous},
		{"   ", Anonymous},
	}
	for _, tt := range tests {
		if got := DeviceIdentity(tt.in); got != tt.want {
			t.Errorf("DeviceIdentity(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDeviceIdentity_Bounded(t *testing.T) {
	id := DeviceIdentity(strings.Repeat("a", 1000))
	if n := len([]rune(strings.TrimPrefix(string(id), "device:"))); n > maxIDLength+1 {
		t.Errorf("id length = %d, want at most %d", n, maxIDLength+1)
	}
}

func TestIdentity_Method(t *testing.T) {
	tests := []struct {
		id   Identity
		want Method
	}{
		{SessionIdentity("u1"), MethodSession},
		{DeviceIdentity("d1"), MethodDevice},
		{Anonymous, MethodAnonymous},
		{"custom", MethodAnonymous},
	}
	for _, tt := range tests {
		if got := tt.id.Method(); got != tt.want {
			t.Errorf("%q.Method() = %s, want %s", tt.id, got, tt.want)
		}
	}
}

func TestContext(t *testing.T) {
	ctx := context.Background()
	if !FromContext(ctx).IsZero() {
		t.Error("empty context should carry no identity")
	}
	ctx = WithIdentity(ctx, "device:x")
	if got := FromContext(ctx); got != "device:x" {
		t.Errorf("FromContext() = %q, want device:x", got)
	}
}
