package ocr

import (
	"context"
	"errors"
	"time"
)

// Provider abstracts an asynchronous OCR service: submit a job against
// an uploaded artifact, poll it to completion, fetch the full result.
type Provider interface {
	Submit(ctx context.Context, key string) (string, error)
	Poll(ctx context.Context, jobID string) (JobStatus, error)
	Fetch(ctx context.Context, jobID string) ([]Page, error)
}

var (
	ErrJobFailed  = errors.New("ocr job failed")
	ErrPollBudget = errors.New("ocr poll attempts exhausted")
)

type JobStatus string

const (
	JobInProgress     JobStatus = "IN_PROGRESS"
	JobSucceeded      JobStatus = "SUCCEEDED"
	JobFailed         JobStatus = "FAILED"
	JobPartialSuccess JobStatus = "PARTIAL_SUCCESS"
)

func (s JobStatus) Done() bool {
	return s == JobSucceeded || s == JobPartialSuccess
}

// Job is the handle to one submitted OCR operation. It is owned by a
// single document and mutated only by Wait.
type Job struct {
	ID string

	SubmittedAt time.Time

	Attempts   int
	LastStatus JobStatus

	PageCount int
}

func NewJob(id string) *Job {
	return &Job{
		ID: id,

		SubmittedAt: time.Now(),

		LastStatus: JobInProgress,
	}
}

type Page struct {
	Index int `json:"index"`

	Lines []string `json:"lines"`

	Blocks []Block `json:"blocks"`
}

type Block struct {
	Text string `json:"text"`

	Confidence float64 `json:"confidence"`

	Box [4]float64 `json:"box"` // [left, top, width, height], normalized to page size
}
