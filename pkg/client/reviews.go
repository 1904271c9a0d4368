package client

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/turtacn/meisai-checker/pkg/errors"
	apitypes "github.com/turtacn/meisai-checker/pkg/types/review"
)

const reviewsPath = "/api/v1/reviews"

// ReviewsClient wraps /api/v1/reviews.
type ReviewsClient struct {
	client *Client
}

// CreateRequest is one upload.  UseLLM nil leaves the server default (on).
type CreateRequest struct {
	FileName string
	Document io.Reader
	UseLLM   *bool
}

// Create uploads a .docx and waits for the review.  The document is read
// into memory once; uploads are never retried.
func (r *ReviewsClient) Create(ctx context.Context, req *CreateRequest) (*apitypes.CreateReviewResponse, error) {
	if req == nil || req.Document == nil {
		return nil, errors.InvalidParam("document is required")
	}
	if req.FileName == "" {
		return nil, errors.InvalidParam("file name is required")
	}
	content, err := io.ReadAll(req.Document)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDocumentReadFailed, "read document").WithDetail(req.FileName)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(apitypes.FormFieldDocument, filepath.Base(req.FileName))
	if err == nil {
		_, err = part.Write(content)
	}
	if err == nil && req.UseLLM != nil {
		err = mw.WriteField(apitypes.FormFieldUseLLM, strconv.FormatBool(*req.UseLLM))
	}
	if err == nil {
		err = mw.Close()
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "build upload")
	}
	payload := buf.Bytes()

	body, err := r.client.do(ctx, request{
		method:      http.MethodPost,
		path:        reviewsPath,
		contentType: mw.FormDataContentType(),
		body:        func() (io.Reader, error) { return bytes.NewReader(payload), nil },
	})
	if err != nil {
		return nil, err
	}
	var out apitypes.CreateReviewResponse
	if err := decodeJSON(body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateFromFile uploads the file at path.
func (r *ReviewsClient) CreateFromFile(ctx context.Context, path string, useLLM bool) (*apitypes.CreateReviewResponse, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDocumentNotFound, "open document").WithDetail(path)
	}
	defer f.Close()
	return r.Create(ctx, &CreateRequest{FileName: filepath.Base(path), Document: f, UseLLM: &useLLM})
}

// Get fetches one run with all its suggestions.
func (r *ReviewsClient) Get(ctx context.Context, id string) (*apitypes.Run, error) {
	if id == "" {
		return nil, errors.InvalidParam("run id is required")
	}
	var run apitypes.Run
	if err := r.client.getJSON(ctx, reviewsPath+"/"+url.PathEscape(id), &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// Markdown fetches the rendered summary of one run.
func (r *ReviewsClient) Markdown(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", errors.InvalidParam("run id is required")
	}
	body, err := r.client.do(ctx, request{
		method: http.MethodGet,
		path:   reviewsPath + "/" + url.PathEscape(id) + "?format=markdown",
		accept: apitypes.MarkdownContentType,
	})
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// List returns the most recent runs, newest first.  limit <= 0 uses the
// server default.
func (r *ReviewsClient) List(ctx context.Context, limit int) ([]apitypes.RunListItem, error) {
	path := reviewsPath
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out apitypes.ListReviewsResponse
	if err := r.client.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return out.Runs, nil
}

//Personal.AI order the ending
