package document

import (
	"path/filepath"
	"strings"
	"time"
)

type Status string

const (
	StatusPending      Status = "pending"
	StatusConverting   Status = "converting"
	StatusUploaded     Status = "uploaded"
	StatusOCRSubmitted Status = "ocr-submitted"
	StatusOCRPolling   Status = "ocr-polling"
	StatusOCRComplete  Status = "ocr-complete"
	StatusCorrecting   Status = "correcting"
	StatusValidating   Status = "validating"
	StatusDone         Status = "done"
	StatusFailed       Status = "failed"
)

func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusFailed
}

// Document tracks one scanned record through the pipeline.
//
// RemoteKey is non-empty only while an object for this document exists
// in remote storage. It is recorded for batch cleanup and cleared once
// the owning batch has deleted it.
type Document struct {
	Key Key

	SourcePath string
	PDFPath    string

	RemoteKey string
	JobID     string

	Status Status

	Err error
}

func New(sourcePath string) *Document {
	return &Document{
		Key: KeyFor(sourcePath),

		SourcePath: sourcePath,

		Status: StatusPending,
	}
}

// Key is the stable document identity, derived from the source
// filename without its extension.
type Key string

func KeyFor(sourcePath string) Key {
	name := filepath.Base(sourcePath)
	return Key(strings.TrimSuffix(name, filepath.Ext(name)))
}

func (k Key) String() string {
	return string(k)
}

// Outcome is the terminal result of one document's pipeline pass.
type Outcome struct {
	Key Key

	Status Status
	Err    error

	Warnings []string

	RawPath       string
	CorrectedPath string

	Elapsed time.Duration
}

func (o Outcome) Failed() bool {
	return o.Status == StatusFailed
}

// Partition splits keys into consecutive batches of at most size
// documents, preserving input order so reruns over an unchanged input
// set are reproducible.
func Partition[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = 1
	}

	var batches [][]T

	for len(items) > 0 {
		n := min(size, len(items))

		batches = append(batches, items[:n])
		items = items[n:]
	}

	return batches
}
