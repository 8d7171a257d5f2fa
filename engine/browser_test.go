package engine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-rod/rod/lib/proto"
)

func TestIsFrameDetached(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("navigation failed: net::ERR_NAME_NOT_RESOLVED"), false},
		{errors.New("Navigating frame was detached"), true},
		{fmt.Errorf("browser: navigate: %w", errors.New("frame detached")), true},
	}
	for _, tt := range tests {
		if got := IsFrameDetached(tt.err); got != tt.want {
			t.Errorf("IsFrameDetached(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestBlockedSet(t *testing.T) {
	set := blockedSet([]string{"Image", " font ", "media", "bogus"})
	if len(set) != 3 {
		t.Fatalf("expected 3 blocked types, got %d", len(set))
	}
	for _, rt := range []proto.NetworkResourceType{
		proto.NetworkResourceTypeImage,
		proto.NetworkResourceTypeFont,
		proto.NetworkResourceTypeMedia,
	} {
		if _, ok := set[rt]; !ok {
			t.Errorf("%s not blocked", rt)
		}
	}
}

func TestIsAdDomain(t *testing.T) {
	tests := []struct {
		host string
		want bool
	}{
		{"doubleclick.net", true},
		{"stats.g.doubleclick.net", true},
		{"WWW.GOOGLE-ANALYTICS.COM", true},
		{"store.steampowered.com", false},
		{"net", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := isAdDomain(tt.host); got != tt.want {
			t.Errorf("isAdDomain(%q) = %v, want %v", tt.host, got, tt.want)
		}
	}
}

func TestWaitStrategyString(t *testing.T) {
	if WaitDOMReady.String() != "domcontentloaded" || WaitLoad.String() != "load" {
		t.Errorf("unexpected names %s %s", WaitDOMReady, WaitLoad)
	}
}
