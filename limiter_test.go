package siteforge

import (
	"testing"
	"time"
)

func TestLoginLimiterAllowsUnderLimit(t *testing.T) {
	l := NewLoginLimiter(3, time.Minute)
	for i := 0; i < 3; i++ {
		if !l.Check("1.2.3.4") {
			t.Fatalf("blocked after %d failures", i)
		}
		l.Record("1.2.3.4")
	}
	if l.Check("1.2.3.4") {
		t.Error("allowed after reaching the limit")
	}
}

func TestLoginLimiterIsolatesIPs(t *testing.T) {
	l := NewLoginLimiter(1, time.Minute)
	l.Record("1.1.1.1")
	if l.Check("1.1.1.1") {
		t.Error("limited IP allowed")
	}
	if !l.Check("2.2.2.2") {
		t.Error("unrelated IP blocked")
	}
}

func TestLoginLimiterWindowExpiry(t *testing.T) {
	l := NewLoginLimiter(1, 30*time.Millisecond)
	l.Record("1.2.3.4")
	if l.Check("1.2.3.4") {
		t.Fatal("allowed inside the window")
	}
	time.Sleep(60 * time.Millisecond)
	if !l.Check("1.2.3.4") {
		t.Error("still blocked after the window expired")
	}
}

func TestLoginLimiterCheckDoesNotRecord(t *testing.T) {
	l := NewLoginLimiter(2, time.Minute)
	for i := 0; i < 10; i++ {
		if !l.Check("1.2.3.4") {
			t.Fatal("Check alone must never consume the budget")
		}
	}
}
