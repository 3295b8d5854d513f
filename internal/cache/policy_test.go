package cache

import (
	"testing"
	"time"
)

func TestPolicyExpiresAt(t *testing.T) {
	now := time.UnixMilli(1000)
	testCases := []struct {
		name    string
		ttl     time.Duration
		enabled bool
		expires time.Time
		label   string
	}{
		{"never", 0, false, time.Time{}, "never"},
		{"forever", Forever, true, time.Time{}, "forever"},
		{"negative normalized", -5 * time.Second, true, time.Time{}, "forever"},
		{"ttl", 10 * time.Second, true, time.UnixMilli(11000), "10s"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := NewPolicy(tc.ttl)
			if p.Enabled() != tc.enabled {
				t.Fatalf("enabled mismatch: %v", p.Enabled())
			}
			if got := p.ExpiresAt(now); !got.Equal(tc.expires) {
				t.Fatalf("expiresAt mismatch: %v", got)
			}
			if p.String() != tc.label {
				t.Fatalf("label mismatch: %s", p.String())
			}
		})
	}
}

func TestEntryLiveAndExpired(t *testing.T) {
	now := time.UnixMilli(5000)

	forever := Entry{Data: 1}
	if !forever.Live(now) || forever.Expired(now) {
		t.Fatalf("entry without expiry must stay live")
	}

	atNow := Entry{ExpiresAt: now}
	if atNow.Live(now) {
		t.Fatalf("entry expiring now must not be served")
	}
	if atNow.Expired(now) {
		t.Fatalf("entry expiring now must survive clean")
	}

	past := Entry{ExpiresAt: now.Add(-time.Millisecond)}
	if past.Live(now) || !past.Expired(now) {
		t.Fatalf("past entry must be expired")
	}
}
