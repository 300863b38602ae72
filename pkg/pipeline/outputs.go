package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/archivelab/scriptorium/pkg/document"
	"github.com/archivelab/scriptorium/pkg/fidelity"
	"github.com/archivelab/scriptorium/pkg/ocr"
)

// Writer persists per-document outputs under <dir>/<key>/.
type Writer struct {
	dir string
}

func NewWriter(dir string) *Writer {
	return &Writer{
		dir: dir,
	}
}

// Record is the combined multi-page output for one document.
type Record struct {
	Key string `json:"key"`

	PageCount int        `json:"pageCount"`
	Pages     []ocr.Page `json:"pages"`

	CorrectedText string              `json:"correctedText,omitempty"`
	Entities      map[string][]string `json:"entities,omitempty"`

	Fidelity *fidelity.Metrics `json:"fidelity,omitempty"`
	Warnings []string          `json:"warnings,omitempty"`
}

type wordCoord struct {
	Page int `json:"page"`

	Text       string     `json:"text"`
	Confidence float64    `json:"confidence"`
	Box        [4]float64 `json:"boundingBox"`
}

func (w *Writer) SaveRaw(key document.Key, text string) (string, error) {
	return w.saveText(key, key.String()+".raw.txt", text)
}

func (w *Writer) SaveCorrected(key document.Key, text string) (string, error) {
	return w.saveText(key, key.String()+".corrected.txt", text)
}

func (w *Writer) SaveCoords(key document.Key, pages []ocr.Page) (string, error) {
	coords := []wordCoord{}

	for _, page := range pages {
		for _, block := range page.Blocks {
			coords = append(coords, wordCoord{
				Page: page.Index,

				Text:       block.Text,
				Confidence: block.Confidence,
				Box:        block.Box,
			})
		}
	}

	return w.saveJSON(key, key.String()+".coords.json", coords)
}

func (w *Writer) SaveEntities(key document.Key, entities map[string][]string) (string, error) {
	return w.saveJSON(key, key.String()+".entities.json", entities)
}

func (w *Writer) SaveRecord(key document.Key, record *Record) (string, error) {
	return w.saveJSON(key, key.String()+".document.json", record)
}

// SavePDF keeps a local copy of the converted artifact next to the
// text outputs.
func (w *Writer) SavePDF(key document.Key, pdfPath string) (string, error) {
	dir, err := w.docDir(key)

	if err != nil {
		return "", err
	}

	src, err := os.Open(pdfPath)

	if err != nil {
		return "", fmt.Errorf("open %s: %w", pdfPath, err)
	}

	defer src.Close()

	path := filepath.Join(dir, key.String()+".pdf")
	dst, err := os.Create(path)

	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}

	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("copy %s: %w", path, err)
	}

	return path, nil
}

func (w *Writer) saveText(key document.Key, name, text string) (string, error) {
	dir, err := w.docDir(key)

	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, name)

	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}

	return path, nil
}

func (w *Writer) saveJSON(key document.Key, name string, v any) (string, error) {
	dir, err := w.docDir(key)

	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(v, "", "  ")

	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", name, err)
	}

	path := filepath.Join(dir, name)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}

	return path, nil
}

func (w *Writer) docDir(key document.Key) (string, error) {
	dir := filepath.Join(w.dir, key.String())

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir %s: %w", dir, err)
	}

	return dir, nil
}
