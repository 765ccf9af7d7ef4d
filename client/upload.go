package client

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/pkg/errors"
)

// UploadFile sends one file as a multipart upload and returns the URL the
// server stored it under. The body cannot be replayed, so an expired token
// fails the upload instead of refreshing mid-stream.
func (c *Client) UploadFile(ctx context.Context, filename string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", errors.Wrap(err, "[Client.UploadFile] create form file")
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", errors.Wrap(err, "[Client.UploadFile] copy file")
	}
	if err := writer.Close(); err != nil {
		return "", errors.Wrap(err, "[Client.UploadFile] close writer")
	}

	var out struct {
		FileURL string `json:"file_url"`
	}
	req := request{
		method:      http.MethodPost,
		path:        "uploads/",
		raw:         &buf,
		contentType: writer.FormDataContentType(),
		noRetry:     true,
	}
	if err := c.do(ctx, req, &out); err != nil {
		return "", err
	}
	return out.FileURL, nil
}
