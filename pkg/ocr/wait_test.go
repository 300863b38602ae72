package ocr_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/archivelab/scriptorium/pkg/ocr"

	"github.com/stretchr/testify/require"
)

type scriptedProvider struct {
	polls []pollResult
	calls int
}

type pollResult struct {
	status ocr.JobStatus
	err    error
}

func (p *scriptedProvider) Submit(ctx context.Context, key string) (string, error) {
	return "job-1", nil
}

func (p *scriptedProvider) Poll(ctx context.Context, jobID string) (ocr.JobStatus, error) {
	if p.calls >= len(p.polls) {
		last := p.polls[len(p.polls)-1]
		p.calls++
		return last.status, last.err
	}

	result := p.polls[p.calls]
	p.calls++

	return result.status, result.err
}

func (p *scriptedProvider) Fetch(ctx context.Context, jobID string) ([]ocr.Page, error) {
	return nil, nil
}

func policy(maxAttempts int) ocr.PollPolicy {
	return ocr.PollPolicy{
		Delay:       time.Second,
		MaxAttempts: maxAttempts,

		Sleep: func(ctx context.Context, d time.Duration) error {
			return nil
		},
	}
}

func TestWaitSucceedsWithinBudget(t *testing.T) {
	provider := &scriptedProvider{
		polls: []pollResult{
			{status: ocr.JobInProgress},
			{status: ocr.JobInProgress},
			{status: ocr.JobSucceeded},
		},
	}

	job := ocr.NewJob("job-1")
	status, err := ocr.Wait(context.Background(), provider, job, policy(5))

	require.NoError(t, err)
	require.Equal(t, ocr.JobSucceeded, status)
	require.Equal(t, 3, job.Attempts)
}

func TestWaitPartialSuccessExitsLoop(t *testing.T) {
	provider := &scriptedProvider{
		polls: []pollResult{
			{status: ocr.JobInProgress},
			{status: ocr.JobPartialSuccess},
		},
	}

	status, err := ocr.Wait(context.Background(), provider, ocr.NewJob("job-1"), policy(5))

	require.NoError(t, err)
	require.Equal(t, ocr.JobPartialSuccess, status)
}

func TestWaitExhaustsBudget(t *testing.T) {
	provider := &scriptedProvider{
		polls: []pollResult{
			{status: ocr.JobInProgress},
		},
	}

	job := ocr.NewJob("job-1")
	_, err := ocr.Wait(context.Background(), provider, job, policy(4))

	require.ErrorIs(t, err, ocr.ErrPollBudget)
	require.Equal(t, 4, job.Attempts)
	require.Equal(t, 4, provider.calls)
}

func TestWaitFailedStatusIsTerminal(t *testing.T) {
	provider := &scriptedProvider{
		polls: []pollResult{
			{status: ocr.JobInProgress},
			{status: ocr.JobFailed},
		},
	}

	job := ocr.NewJob("job-1")
	_, err := ocr.Wait(context.Background(), provider, job, policy(10))

	require.ErrorIs(t, err, ocr.ErrJobFailed)
	require.Equal(t, 2, job.Attempts)
}

func TestWaitTransportErrorsConsumeAttempts(t *testing.T) {
	transport := errors.New("connection reset")

	provider := &scriptedProvider{
		polls: []pollResult{
			{err: transport},
			{err: transport},
			{status: ocr.JobSucceeded},
		},
	}

	status, err := ocr.Wait(context.Background(), provider, ocr.NewJob("job-1"), policy(5))

	require.NoError(t, err)
	require.Equal(t, ocr.JobSucceeded, status)
}

func TestWaitTransportErrorsExhaustBudget(t *testing.T) {
	transport := errors.New("connection reset")

	provider := &scriptedProvider{
		polls: []pollResult{
			{err: transport},
		},
	}

	_, err := ocr.Wait(context.Background(), provider, ocr.NewJob("job-1"), policy(3))

	require.ErrorIs(t, err, transport)
	require.Equal(t, 3, provider.calls)
}

func TestWaitHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	provider := &scriptedProvider{
		polls: []pollResult{
			{err: context.Canceled},
		},
	}

	_, err := ocr.Wait(ctx, provider, ocr.NewJob("job-1"), policy(10))

	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, provider.calls)
}
