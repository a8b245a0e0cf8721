package race

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"webnmap/internal/testutil"
)

func ok(name, payload string, delay time.Duration) Provider {
	return Func(name, func(ctx context.Context) (string, error) {
		select {
		case <-time.After(delay):
			return payload, nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	})
}

func fail(name, msg string, delay time.Duration) Provider {
	return Func(name, func(ctx context.Context) (string, error) {
		time.Sleep(delay)
		return "", errors.New(msg)
	})
}

func TestRun_NoProviders(t *testing.T) {
	start := time.Now()
	out := Run(context.Background(), nil, time.Hour)

	testutil.AssertTrue(t, time.Since(start) < 50*time.Millisecond, "must return immediately")
	testutil.AssertTrue(t, out.AllFailed, "zero providers is a failure")
	testutil.AssertContains(t, out.Errors[0], "no providers configured", "error should name the cause")
	testutil.AssertEqual(t, out.String(), "Error: No API providers configured.", "rendered text")
	testutil.AssertErrorIs(t, out.Err(), ErrNoProviders, "Err should expose sentinel")
}

func TestRun_SingleProvider(t *testing.T) {
	t.Run("success is wrapped with its name", func(t *testing.T) {
		out := Run(context.Background(), []Provider{ok("rdap", "Handle: EXAMPLE", 0)}, 0)
		testutil.AssertEqual(t, out.Winner, "rdap", "winner")
		testutil.AssertEqual(t, out.String(), "[Source: rdap]\n\nHandle: EXAMPLE", "rendered text")
	})

	t.Run("failure surfaces the message", func(t *testing.T) {
		out := Run(context.Background(), []Provider{fail("rdap", "HTTP 404", 0)}, 0)
		testutil.AssertTrue(t, out.AllFailed, "should fail")
		testutil.AssertEqual(t, out.Errors, []string{"rdap: HTTP 404"}, "single error")
		testutil.AssertEqual(t, out.String(), "Error: rdap failed: HTTP 404", "rendered text")
	})

	t.Run("is not bound by the race timer", func(t *testing.T) {
		out := Run(context.Background(), []Provider{ok("slow", "done", 30*time.Millisecond)}, 5*time.Millisecond)
		testutil.AssertTrue(t, out.Succeeded(), "single provider is awaited directly")
	})
}

func TestRun_OneSuccessRegardlessOfOrder(t *testing.T) {
	orders := []struct {
		name      string
		providers []Provider
	}{
		{"winner first", []Provider{
			ok("ipwhois", "Country: US", 0),
			fail("ipapi", "status fail", 20*time.Millisecond),
			fail("ipapico", "HTTP 429", 30*time.Millisecond),
		}},
		{"winner last", []Provider{
			fail("ipapi", "status fail", 0),
			fail("ipapico", "HTTP 429", 0),
			ok("ipwhois", "Country: US", 30*time.Millisecond),
		}},
		{"winner middle among sentinel payloads", []Provider{
			Func("ipapi", func(context.Context) (string, error) { return "Error: quota", nil }),
			ok("ipwhois", "Country: US", 10*time.Millisecond),
			Func("ipapico", func(context.Context) (string, error) { return "", nil }),
		}},
	}

	for _, tt := range orders {
		t.Run(tt.name, func(t *testing.T) {
			out := Run(context.Background(), tt.providers, time.Second)
			testutil.AssertEqual(t, out.Winner, "ipwhois", "the only successful provider wins")
			testutil.AssertEqual(t, out.Payload, "Country: US", "its payload is returned")
			testutil.AssertFalse(t, out.AllFailed || out.TimedOut, "exactly one variant")
		})
	}
}

func TestRun_FirstSuccessWins(t *testing.T) {
	out := Run(context.Background(), []Provider{
		ok("slow", "slow answer", 200*time.Millisecond),
		ok("fast", "fast answer", 0),
	}, time.Second)

	testutil.AssertEqual(t, out.Winner, "fast", "fastest success wins")
}

func TestRun_AllFailed(t *testing.T) {
	out := Run(context.Background(), []Provider{
		fail("hackertarget", "API count exceeded", 0),
		fail("rdap", "HTTP 404", 5*time.Millisecond),
		Func("ipwhois", func(context.Context) (string, error) { return "Error: invalid ip", nil }),
	}, time.Second)

	testutil.AssertTrue(t, out.AllFailed, "all failed")
	testutil.AssertLen(t, out.Errors, 3, "one error per provider")
	for _, want := range []string{"hackertarget: API count exceeded", "rdap: HTTP 404", "ipwhois: Error: invalid ip"} {
		testutil.AssertContains(t, out.Errors, want, "error should carry name and message")
	}
	testutil.AssertContains(t, out.String(), "All APIs failed:\n", "rendered header")
}

func TestRun_Timeout(t *testing.T) {
	out := Run(context.Background(), []Provider{
		ok("a", "late", time.Second),
		ok("b", "late", time.Second),
	}, 20*time.Millisecond)

	testutil.AssertTrue(t, out.TimedOut, "should time out")
	testutil.AssertFalse(t, out.AllFailed, "timeout is distinct from all-failed")
	testutil.AssertEqual(t, out.String(), "Error: All API requests timed out after 0 seconds.", "rendered text")

	out.Timeout = DefaultTimeout
	testutil.AssertEqual(t, out.String(), "Error: All API requests timed out after 60 seconds.", "default rendering")
}

func TestRun_CancelsLosers(t *testing.T) {
	var cancelled atomic.Bool
	loser := Func("loser", func(ctx context.Context) (string, error) {
		<-ctx.Done()
		cancelled.Store(true)
		return "", ctx.Err()
	})

	out := Run(context.Background(), []Provider{ok("winner", "x", 0), loser}, time.Second)
	testutil.AssertEqual(t, out.Winner, "winner", "winner")
	testutil.AssertEventually(t, cancelled.Load, time.Second, "loser should observe cancellation")
}

func TestRun_RecoversPanics(t *testing.T) {
	out := Run(context.Background(), []Provider{
		Func("boom", func(context.Context) (string, error) { panic("nil map") }),
		ok("steady", "answer", 5*time.Millisecond),
	}, time.Second)

	testutil.AssertEqual(t, out.Winner, "steady", "panicking provider counts as a failure")
}

func ExampleRun() {
	out := Run(context.Background(), []Provider{
		Func("google-doh", func(context.Context) (string, error) { return "example.com. A 93.184.216.34", nil }),
	}, 0)
	fmt.Println(out)
	// Output:
	// [Source: google-doh]
	//
	// example.com. A 93.184.216.34
}
