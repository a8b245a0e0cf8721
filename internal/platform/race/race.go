// Package race runs redundant providers of the same lookup concurrently and
// keeps the first usable answer. Losing providers are abandoned: their shared
// context is cancelled once the race resolves, and their results are drained
// into a buffered channel nobody reads.
package race

import (
	"context"
	"fmt"
	"strings"
	"time"

	"webnmap/internal/platform/errors"
)

// DefaultTimeout bounds a race with more than one provider.
const DefaultTimeout = 60 * time.Second

// ErrorSentinel marks a payload that is really an error message.
const ErrorSentinel = "Error:"

// ErrNoProviders is reported when a race is started with an empty provider set.
var ErrNoProviders = errors.New("no providers configured")

// Provider is one source able to answer a lookup.
type Provider interface {
	Name() string
	Invoke(ctx context.Context) (string, error)
}

type funcProvider struct {
	name string
	fn   func(ctx context.Context) (string, error)
}

func (p funcProvider) Name() string                               { return p.name }
func (p funcProvider) Invoke(ctx context.Context) (string, error) { return p.fn(ctx) }

// Func adapts a function into a Provider.
func Func(name string, fn func(ctx context.Context) (string, error)) Provider {
	return funcProvider{name: name, fn: fn}
}

// Outcome is the result of a race. Exactly one of the three variants is set:
// a winner with its payload, AllFailed with one error per provider, or TimedOut.
type Outcome struct {
	Winner  string
	Payload string

	AllFailed bool
	Errors    []string

	TimedOut bool
	Timeout  time.Duration

	// Providers is how many providers entered the race.
	Providers int
}

// Succeeded reports whether a provider won.
func (o Outcome) Succeeded() bool {
	return o.Winner != ""
}

// Err converts a failed outcome into an error, nil on success.
func (o Outcome) Err() error {
	switch {
	case o.Succeeded():
		return nil
	case o.TimedOut:
		return errors.Wrapf(errors.ErrTimeout, "all providers timed out after %s", o.Timeout)
	case o.Providers == 0:
		return ErrNoProviders
	default:
		return errors.Wrap(errors.ErrAllProvidersFailed, strings.Join(o.Errors, "; "))
	}
}

// String renders the outcome the way it is stored in scan results.
func (o Outcome) String() string {
	switch {
	case o.Succeeded():
		return fmt.Sprintf("[Source: %s]\n\n%s", o.Winner, o.Payload)
	case o.TimedOut:
		return fmt.Sprintf("Error: All API requests timed out after %d seconds.", int(o.Timeout.Seconds()))
	case o.Providers == 0:
		return "Error: No API providers configured."
	case o.Providers == 1 && len(o.Errors) == 1:
		return "Error: " + strings.Replace(o.Errors[0], ": ", " failed: ", 1)
	default:
		return "All APIs failed:\n" + strings.Join(o.Errors, "\n")
	}
}

// IsErrorPayload reports whether a provider answer must be treated as a failure.
func IsErrorPayload(payload string) bool {
	return strings.TrimSpace(payload) == "" || strings.HasPrefix(payload, ErrorSentinel)
}

type result struct {
	name    string
	payload string
	err     error
}

// Run races providers and returns the first success. A non-positive timeout
// uses DefaultTimeout. Cancelling ctx resolves the race as timed out.
func Run(ctx context.Context, providers []Provider, timeout time.Duration) Outcome {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	switch len(providers) {
	case 0:
		return Outcome{AllFailed: true, Errors: []string{ErrNoProviders.Error()}}
	case 1:
		return runSingle(ctx, providers[0])
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan result, len(providers))
	for _, p := range providers {
		go func(p Provider) {
			results <- invoke(ctx, p)
		}(p)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	errs := make([]string, 0, len(providers))
	for pending := len(providers); pending > 0; pending-- {
		select {
		case r := <-results:
			if r.err == nil {
				return Outcome{Winner: r.name, Payload: r.payload, Providers: len(providers)}
			}
			errs = append(errs, fmt.Sprintf("%s: %s", r.name, r.err.Error()))
		case <-timer.C:
			return Outcome{TimedOut: true, Timeout: timeout, Providers: len(providers)}
		case <-ctx.Done():
			return Outcome{TimedOut: true, Timeout: timeout, Providers: len(providers)}
		}
	}

	return Outcome{AllFailed: true, Errors: errs, Providers: len(providers)}
}

// runSingle awaits one provider directly; it is expected to self-timeout.
func runSingle(ctx context.Context, p Provider) Outcome {
	r := invoke(ctx, p)
	if r.err != nil {
		return Outcome{
			AllFailed: true,
			Errors:    []string{fmt.Sprintf("%s: %s", r.name, r.err.Error())},
			Providers: 1,
		}
	}
	return Outcome{Winner: r.name, Payload: r.payload, Providers: 1}
}

// invoke calls p, turning panics and error-shaped payloads into errors.
func invoke(ctx context.Context, p Provider) (r result) {
	r.name = p.Name()
	defer func() {
		if rec := recover(); rec != nil {
			r.payload = ""
			r.err = fmt.Errorf("panic: %v", rec)
		}
	}()

	payload, err := p.Invoke(ctx)
	switch {
	case err != nil:
		r.err = err
	case IsErrorPayload(payload):
		msg := strings.TrimSpace(payload)
		if msg == "" {
			msg = "empty response"
		}
		r.err = errors.New(msg)
	default:
		r.payload = payload
	}
	return r
}
