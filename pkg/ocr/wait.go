package ocr

import (
	"context"
	"time"
)

// PollPolicy bounds the poll loop. Worst-case wall-clock time per job
// is roughly Delay * MaxAttempts.
type PollPolicy struct {
	Delay       time.Duration
	MaxAttempts int

	// Sleep is injectable for tests. Defaults to a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

func (p PollPolicy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()

	case <-timer.C:
		return nil
	}
}

// Wait polls the job until it reaches a terminal status or the attempt
// budget is exhausted.
//
// A transport error during a poll is retryable and consumes an attempt.
// An explicit FAILED status is terminal immediately. SUCCEEDED and
// PARTIAL_SUCCESS both exit successfully; partial results are the
// caller's decision to accept at fetch time.
func Wait(ctx context.Context, provider Provider, job *Job, policy PollPolicy) (JobStatus, error) {
	var lastErr error

	for attempt := 0; attempt < policy.MaxAttempts; attempt++ {
		if attempt > 0 {
			if err := policy.sleep(ctx, policy.Delay); err != nil {
				return job.LastStatus, err
			}
		}

		status, err := provider.Poll(ctx, job.ID)
		job.Attempts++

		if err != nil {
			if ctx.Err() != nil {
				return job.LastStatus, ctx.Err()
			}

			lastErr = err
			continue
		}

		job.LastStatus = status

		switch status {
		case JobSucceeded, JobPartialSuccess:
			return status, nil

		case JobFailed:
			return status, ErrJobFailed
		}
	}

	if lastErr != nil {
		return job.LastStatus, lastErr
	}

	return job.LastStatus, ErrPollBudget
}
