package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type pinger struct{ err error }

func (p *pinger) HealthPing(ctx context.Context) error { return p.err }

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met in time")
}

func TestPingChecker_HealthyAndUnhealthy(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ok := NewPingChecker("ok", &pinger{}, zerolog.Nop(), time.Second)
	go ok.Start(ctx, 10*time.Millisecond)
	waitFor(t, ok.IsHealthy)

	bad := NewPingChecker("bad", &pinger{err: errors.New("down")}, zerolog.Nop(), time.Second)
	go bad.Start(ctx, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	if bad.IsHealthy() {
		t.Fatalf("failing pinger must report unhealthy")
	}
}

func TestPingChecker_NilPingerAlwaysHealthy(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := NewPingChecker("fake", nil, zerolog.Nop(), time.Second)
	go c.Start(ctx, 10*time.Millisecond)
	waitFor(t, c.IsHealthy)
}

func TestServiceHealthChecker_AggregatesAll(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	okChecker := NewPingChecker("ok", &pinger{}, zerolog.Nop(), time.Second)
	badChecker := NewPingChecker("bad", &pinger{err: errors.New("down")}, zerolog.Nop(), time.Second)
	go okChecker.Start(ctx, 10*time.Millisecond)
	go badChecker.Start(ctx, 10*time.Millisecond)

	svc := NewServiceHealthChecker(zerolog.Nop(), okChecker, badChecker)
	go svc.Start(ctx, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	if svc.IsHealthy() {
		t.Fatalf("one unhealthy dependency must mark the service down")
	}

	allOK := NewServiceHealthChecker(zerolog.Nop(), okChecker)
	go allOK.Start(ctx, 10*time.Millisecond)
	waitFor(t, allOK.IsHealthy)
}
