package textract

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/archivelab/scriptorium/pkg/ocr"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"
	"github.com/aws/smithy-go"
)

var _ ocr.Provider = (*Client)(nil)

// API is the subset of the Textract client the provider relies on.
type API interface {
	StartDocumentTextDetection(ctx context.Context, params *textract.StartDocumentTextDetectionInput, optFns ...func(*textract.Options)) (*textract.StartDocumentTextDetectionOutput, error)
	GetDocumentTextDetection(ctx context.Context, params *textract.GetDocumentTextDetectionInput, optFns ...func(*textract.Options)) (*textract.GetDocumentTextDetectionOutput, error)
}

type Client struct {
	bucket string
	api    API
}

func New(bucket string, api API) (*Client, error) {
	if bucket == "" {
		return nil, errors.New("bucket must not be empty")
	}

	if api == nil {
		return nil, errors.New("textract api must not be nil")
	}

	return &Client{
		bucket: bucket,
		api:    api,
	}, nil
}

func (c *Client) Submit(ctx context.Context, key string) (string, error) {
	resp, err := c.api.StartDocumentTextDetection(ctx, &textract.StartDocumentTextDetectionInput{
		DocumentLocation: &types.DocumentLocation{
			S3Object: &types.S3Object{
				Bucket: aws.String(c.bucket),
				Name:   aws.String(key),
			},
		},
	})

	if err != nil {
		return "", wrapAPIError("start text detection", err)
	}

	if resp.JobId == nil || *resp.JobId == "" {
		return "", errors.New("start text detection: empty job id")
	}

	return *resp.JobId, nil
}

func (c *Client) Poll(ctx context.Context, jobID string) (ocr.JobStatus, error) {
	resp, err := c.api.GetDocumentTextDetection(ctx, &textract.GetDocumentTextDetectionInput{
		JobId: aws.String(jobID),

		MaxResults: aws.Int32(1),
	})

	if err != nil {
		return "", wrapAPIError("get text detection", err)
	}

	return convertStatus(resp.JobStatus), nil
}

// Fetch retrieves every result chunk of the job, following NextToken
// until the service reports no more. A failed continuation fails the
// whole fetch: partial documents are never returned silently.
func (c *Client) Fetch(ctx context.Context, jobID string) ([]ocr.Page, error) {
	pages := map[int]*ocr.Page{}

	var nextToken *string

	for {
		resp, err := c.api.GetDocumentTextDetection(ctx, &textract.GetDocumentTextDetectionInput{
			JobId: aws.String(jobID),

			NextToken: nextToken,
		})

		if err != nil {
			return nil, wrapAPIError("fetch text detection results", err)
		}

		for _, block := range resp.Blocks {
			index := 1

			if block.Page != nil {
				index = int(*block.Page)
			}

			page, ok := pages[index]

			if !ok {
				page = &ocr.Page{Index: index}
				pages[index] = page
			}

			switch block.BlockType {
			case types.BlockTypeLine:
				page.Lines = append(page.Lines, aws.ToString(block.Text))

			case types.BlockTypeWord:
				word := ocr.Block{
					Text: aws.ToString(block.Text),
				}

				if block.Confidence != nil {
					word.Confidence = float64(*block.Confidence)
				}

				if block.Geometry != nil && block.Geometry.BoundingBox != nil {
					box := block.Geometry.BoundingBox
					word.Box = [4]float64{
						float64(box.Left),
						float64(box.Top),
						float64(box.Width),
						float64(box.Height),
					}
				}

				page.Blocks = append(page.Blocks, word)
			}
		}

		if resp.NextToken == nil {
			break
		}

		nextToken = resp.NextToken
	}

	result := make([]ocr.Page, 0, len(pages))

	for _, page := range pages {
		result = append(result, *page)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Index < result[j].Index
	})

	return result, nil
}

func convertStatus(status types.JobStatus) ocr.JobStatus {
	switch status {
	case types.JobStatusSucceeded:
		return ocr.JobSucceeded

	case types.JobStatusFailed:
		return ocr.JobFailed

	case types.JobStatusPartialSuccess:
		return ocr.JobPartialSuccess

	default:
		return ocr.JobInProgress
	}
}

func wrapAPIError(op string, err error) error {
	var apiErr smithy.APIError

	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %s: %w", op, apiErr.ErrorCode(), err)
	}

	return fmt.Errorf("%s: %w", op, err)
}
