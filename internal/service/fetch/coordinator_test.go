package fetch

import (
	"context"
	"fmt"
	"testing"
	"time"

	applogger "HashArb/pkg/logger"
)

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func TestFetchAll(t *testing.T) {
	c := NewCoordinator(2, time.Second, testLogger(t))
	defer c.Close()

	results := c.FetchAll(context.Background(), []Job{
		{Category: "prices", Run: func(context.Context) (map[string]float64, error) {
			return map[string]float64{"SHA256": 0.001}, nil
		}},
		{Category: "profits", Run: func(context.Context) (map[string]float64, error) {
			return map[string]float64{"SHA256": 0.002}, nil
		}},
	})

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results["prices"].Data["SHA256"] != 0.001 {
		t.Fatalf("unexpected prices %v", results["prices"].Data)
	}
	if results["profits"].Err != nil {
		t.Fatalf("unexpected error: %v", results["profits"].Err)
	}
}

func TestFetchAllPartialFailure(t *testing.T) {
	c := NewCoordinator(2, time.Second, testLogger(t))
	defer c.Close()

	results := c.FetchAll(context.Background(), []Job{
		{Category: "prices", Run: func(context.Context) (map[string]float64, error) {
			return nil, fmt.Errorf("source down")
		}},
		{Category: "profits", Run: func(context.Context) (map[string]float64, error) {
			return map[string]float64{"SHA256": 0.002}, nil
		}},
	})

	if results["prices"].Err == nil {
		t.Fatalf("expected prices error")
	}
	if results["profits"].Err != nil || results["profits"].Data["SHA256"] != 0.002 {
		t.Fatalf("healthy category must be unaffected: %+v", results["profits"])
	}
}

func TestFetchAllTimeout(t *testing.T) {
	c := NewCoordinator(1, 50*time.Millisecond, testLogger(t))
	defer c.Close()

	results := c.FetchAll(context.Background(), []Job{
		{Category: "slow", Run: func(ctx context.Context) (map[string]float64, error) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Second):
				return map[string]float64{}, nil
			}
		}},
	})

	if results["slow"].Err == nil {
		t.Fatalf("expected timeout error")
	}
}

func TestFetchAllNoJobs(t *testing.T) {
	c := NewCoordinator(1, time.Second, testLogger(t))
	defer c.Close()
	if got := c.FetchAll(context.Background(), nil); len(got) != 0 {
		t.Fatalf("expected empty results")
	}
}
