package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
)

func TestExecuteRetriesAnyFailureByDefault(t *testing.T) {
	exec := NewExecutor(Config{MaxAttempts: 3, Delay: time.Millisecond})

	attempts := 0
	err := exec.Execute(context.Background(), "op", func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("flaky")
		}
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestExecuteReturnsLastErrorUnchanged(t *testing.T) {
	exec := NewExecutor(Config{MaxAttempts: 3, Delay: time.Millisecond})

	attempts := 0
	errs := []error{errors.New("first"), errors.New("second"), errors.New("third")}
	err := exec.Execute(context.Background(), "op", func(context.Context) error {
		e := errs[attempts]
		attempts++
		return e
	}, nil)
	if err != errs[2] {
		t.Fatalf("expected last error returned as is, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestExecuteWaitsFixedDelayBetweenAttempts(t *testing.T) {
	delay := 20 * time.Millisecond
	exec := NewExecutor(Config{MaxAttempts: 3, Delay: delay})

	var stamps []time.Time
	_ = exec.Execute(context.Background(), "op", func(context.Context) error {
		stamps = append(stamps, time.Now())
		return errors.New("down")
	}, nil)
	if len(stamps) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(stamps))
	}
	for i := 1; i < len(stamps); i++ {
		if gap := stamps[i].Sub(stamps[i-1]); gap < delay {
			t.Fatalf("expected at least %s between attempts, got %s", delay, gap)
		}
	}
}

func TestExecuteDoesNotRetryPermanentFailure(t *testing.T) {
	exec := NewExecutor(Config{MaxAttempts: 3, Delay: time.Millisecond})

	attempts := 0
	errPermanent := errors.New("permanent")
	err := exec.Execute(context.Background(), "op", func(context.Context) error {
		attempts++
		return errPermanent
	}, func(error) ErrorClassification {
		return ErrorClassification{Retryable: false, RecordFailure: false}
	})
	if !errors.Is(err, errPermanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestNormalizeFallsBackToDefaultAttempts(t *testing.T) {
	exec := NewExecutor(Config{MaxAttempts: 0})
	if exec.MaxAttempts() != 3 {
		t.Fatalf("expected default of 3 attempts, got %d", exec.MaxAttempts())
	}
}

func TestDoReturnsValueOfSuccessfulAttempt(t *testing.T) {
	exec := NewExecutor(Config{MaxAttempts: 2, Delay: time.Millisecond})

	calls := 0
	got, err := Do(context.Background(), exec, "op", func(context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "partial", errors.New("flaky")
		}
		return "done", nil
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "done" {
		t.Fatalf("expected value from second attempt, got %q", got)
	}
}

func TestExecuteOpensCircuitAfterFailures(t *testing.T) {
	exec := NewExecutor(Config{
		MaxAttempts:             1,
		Delay:                   time.Millisecond,
		BreakerEnabled:          true,
		BreakerMinRequests:      2,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      50 * time.Millisecond,
		BreakerHalfOpenMaxCalls: 1,
	})

	errTemp := errors.New("temporary")
	classifier := func(error) ErrorClassification {
		return ErrorClassification{Retryable: false, RecordFailure: true}
	}

	for i := 0; i < 2; i++ {
		err := exec.Execute(context.Background(), "op", func(context.Context) error {
			return errTemp
		}, classifier)
		if !errors.Is(err, errTemp) {
			t.Fatalf("expected temporary error on iteration %d, got %v", i, err)
		}
	}

	err := exec.Execute(context.Background(), "op", func(context.Context) error {
		t.Fatalf("circuit should be open and must not call operation")
		return nil
	}, classifier)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected open state error, got %v", err)
	}
	if !IsCircuitOpen(err) {
		t.Fatalf("expected IsCircuitOpen to report open circuit")
	}
}
