package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/archivelab/scriptorium/pkg/converter"
	"github.com/archivelab/scriptorium/pkg/corrector"
	"github.com/archivelab/scriptorium/pkg/document"
	"github.com/archivelab/scriptorium/pkg/fidelity"
	"github.com/archivelab/scriptorium/pkg/ocr"
	"github.com/archivelab/scriptorium/pkg/storage"
)

// Pipeline drives one document through the linear stage sequence:
//
//	pending → converting → uploaded → ocr-submitted → ocr-polling →
//	ocr-complete → correcting → validating → done
//
// with a failure edge from every non-terminal stage. Any error is
// caught at this boundary and becomes a terminal failed outcome; it
// never propagates to sibling documents.
type Pipeline struct {
	RunID string

	Converter converter.Provider
	Store     storage.Store
	OCR       ocr.Provider
	Corrector corrector.Provider

	PollPolicy  ocr.PollPolicy
	RetryPolicy corrector.RetryPolicy
	Thresholds  fidelity.Thresholds

	Output *Writer
	TmpDir string

	Recorder *Recorder
	Logger   *slog.Logger
}

func (p *Pipeline) Process(ctx context.Context, doc *document.Document) document.Outcome {
	started := time.Now()

	log := p.Logger.With("document", doc.Key)

	outcome := document.Outcome{
		Key: doc.Key,
	}

	fail := func(err error) document.Outcome {
		p.enter(doc, log, document.StatusFailed)
		doc.Err = err

		p.Recorder.Record(doc.Key, EventTerminal, "failed: "+err.Error())
		log.Error("document failed", "error", err)

		outcome.Status = document.StatusFailed
		outcome.Err = err
		outcome.Elapsed = time.Since(started)

		return outcome
	}

	// converting: local only, no remote side effects on failure.
	p.enter(doc, log, document.StatusConverting)

	doc.PDFPath = filepath.Join(p.TmpDir, doc.Key.String()+".pdf")
	pages, err := p.Converter.Convert(ctx, []string{doc.SourcePath}, doc.PDFPath)

	if err != nil {
		return fail(fmt.Errorf("convert: %w", err))
	}

	log.Debug("converted", "pages", pages)

	if _, err := p.Output.SavePDF(doc.Key, doc.PDFPath); err != nil {
		return fail(err)
	}

	// uploaded: the remote key is recorded on the document the moment
	// the object exists, so batch cleanup sees it even if a later
	// stage fails.
	p.enter(doc, log, document.StatusUploaded)

	remoteKey := p.RunID + "/" + doc.Key.String() + ".pdf"

	if err := p.Store.Upload(ctx, remoteKey, doc.PDFPath); err != nil {
		return fail(fmt.Errorf("upload: %w", err))
	}

	doc.RemoteKey = remoteKey

	p.enter(doc, log, document.StatusOCRSubmitted)

	jobID, err := p.OCR.Submit(ctx, remoteKey)

	if err != nil {
		return fail(fmt.Errorf("submit ocr job: %w", err))
	}

	doc.JobID = jobID
	job := ocr.NewJob(jobID)

	p.enter(doc, log, document.StatusOCRPolling)

	if _, err := ocr.Wait(ctx, p.OCR, job, p.PollPolicy); err != nil {
		return fail(fmt.Errorf("ocr job %s: %w", jobID, err))
	}

	p.enter(doc, log, document.StatusOCRComplete)

	resultPages, err := p.OCR.Fetch(ctx, jobID)

	if err != nil {
		return fail(fmt.Errorf("fetch ocr results: %w", err))
	}

	job.PageCount = len(resultPages)
	rawText := mergeLines(resultPages)

	// Raw output is persisted before correction so a downstream
	// failure never loses it.
	rawPath, err := p.Output.SaveRaw(doc.Key, rawText)

	if err != nil {
		return fail(err)
	}

	outcome.RawPath = rawPath

	if _, err := p.Output.SaveCoords(doc.Key, resultPages); err != nil {
		return fail(err)
	}

	p.enter(doc, log, document.StatusCorrecting)

	result, err := corrector.Retry(ctx, p.Corrector, rawText, p.retryPolicy(doc, log))

	if err != nil {
		return fail(fmt.Errorf("correct: %w", err))
	}

	p.enter(doc, log, document.StatusValidating)

	metrics := fidelity.Validate(rawText, result.Text)

	for _, breach := range metrics.Exceeds(p.Thresholds) {
		warning := fmt.Sprintf("%s exceeds threshold (word-count %.3f, edit-distance %.3f)", breach, metrics.WordCountRatio, metrics.EditDistanceRatio)

		outcome.Warnings = append(outcome.Warnings, warning)
		p.Recorder.Record(doc.Key, EventWarning, warning)
		log.Warn("fidelity threshold exceeded", "breach", breach, "wordCountRatio", metrics.WordCountRatio, "editDistanceRatio", metrics.EditDistanceRatio)
	}

	if p.Thresholds.Gate && len(outcome.Warnings) > 0 {
		return fail(fmt.Errorf("fidelity validation: %s", strings.Join(outcome.Warnings, "; ")))
	}

	correctedPath, err := p.Output.SaveCorrected(doc.Key, result.Text)

	if err != nil {
		return fail(err)
	}

	outcome.CorrectedPath = correctedPath

	if _, err := p.Output.SaveEntities(doc.Key, result.Entities); err != nil {
		return fail(err)
	}

	record := &Record{
		Key: doc.Key.String(),

		PageCount: job.PageCount,
		Pages:     resultPages,

		CorrectedText: result.Text,
		Entities:      result.Entities,

		Fidelity: &metrics,
		Warnings: outcome.Warnings,
	}

	if _, err := p.Output.SaveRecord(doc.Key, record); err != nil {
		return fail(err)
	}

	p.enter(doc, log, document.StatusDone)
	p.Recorder.Record(doc.Key, EventTerminal, "done")
	log.Info("document done", "pages", job.PageCount, "pollAttempts", job.Attempts, "warnings", len(outcome.Warnings))

	outcome.Status = document.StatusDone
	outcome.Elapsed = time.Since(started)

	return outcome
}

func (p *Pipeline) enter(doc *document.Document, log *slog.Logger, status document.Status) {
	doc.Status = status

	p.Recorder.Record(doc.Key, EventStage, string(status))
	log.Debug("stage entered", "status", status)
}

func (p *Pipeline) retryPolicy(doc *document.Document, log *slog.Logger) corrector.RetryPolicy {
	policy := p.RetryPolicy

	inner := policy.Sleep

	policy.Sleep = func(ctx context.Context, d time.Duration) error {
		p.Recorder.Record(doc.Key, EventRetry, "correction retry")
		log.Debug("correction retry", "backoff", d)

		if inner != nil {
			return inner(ctx, d)
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

	return policy
}

func mergeLines(pages []ocr.Page) string {
	var lines []string

	for _, page := range pages {
		lines = append(lines, page.Lines...)
	}

	return strings.Join(lines, "\n")
}
