package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

// Document is an educational material stored by the backend.
type Document struct {
	CreatedAt   time.Time `json:"createdAt,omitzero"`
	UpdatedAt   time.Time `json:"updatedAt,omitzero"`
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	Language    string    `json:"language,omitempty"`
	FileURL     string    `json:"fileUrl,omitempty"`
	FileName    string    `json:"fileName,omitempty"`
	FileType    string    `json:"fileType,omitempty"`
	FileSize    int64     `json:"fileSize,omitempty"`
}

// UnmarshalJSON accepts both "id" and the Mongo-style "_id".
func (d *Document) UnmarshalJSON(data []byte) error {
	type alias Document
	var raw struct {
		alias
		MongoID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*d = Document(raw.alias)
	if d.ID == "" {
		d.ID = raw.MongoID
	}
	return nil
}

// DocumentInput holds the editable metadata of a document.
type DocumentInput struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Language    string `json:"language,omitempty"`
}

// Upload is a new document with its file content.
type Upload struct {
	Body        io.Reader
	FileName    string
	ContentType string
	DocumentInput
}

// ListDocuments returns every public document.
func (c *Client) ListDocuments(ctx context.Context) ([]Document, error) {
	resp, err := c.do(ctx, request{method: http.MethodGet, url: c.endpoint("documents")})
	if err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if err := decode(resp, &raw); err != nil {
		return nil, err
	}
	return decodeList(raw)
}

// decodeList accepts a bare array or an envelope object with the array
// under "documents", "data" or "items". null decodes to an empty list.
func decodeList(raw json.RawMessage) ([]Document, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []Document{}, nil
	}

	if raw[0] == '[' {
		var docs []Document
		if err := json.Unmarshal(raw, &docs); err != nil {
			return nil, errors.Join(ErrDecode, err)
		}
		return docs, nil
	}

	var env map[string]json.RawMessage
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, errors.Join(ErrDecode, err)
	}
	for _, key := range []string{"documents", "data", "items"} {
		if v, ok := env[key]; ok {
			return decodeList(v)
		}
	}
	return nil, fmt.Errorf("%w: no document list in response", ErrDecode)
}

// decodeOne accepts a bare document or one wrapped in "document" or "data".
func decodeOne(raw json.RawMessage) (*Document, error) {
	var env map[string]json.RawMessage
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, errors.Join(ErrDecode, err)
	}
	for _, key := range []string{"document", "data"} {
		if v, ok := env[key]; ok && len(v) > 0 && v[0] == '{' {
			raw = v
			break
		}
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Join(ErrDecode, err)
	}
	return &doc, nil
}

// GetDocument returns a single document.
func (c *Client) GetDocument(ctx context.Context, id string) (*Document, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrMissingID
	}

	resp, err := c.do(ctx, request{method: http.MethodGet, url: c.endpoint("documents", id)})
	if err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if err := decode(resp, &raw); err != nil {
		return nil, err
	}
	return decodeOne(raw)
}

// UpdateDocument replaces the metadata of a document. token is the admin's
// auth-token cookie value.
func (c *Client) UpdateDocument(ctx context.Context, token, id string, in DocumentInput) (*Document, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrMissingID
	}

	body, err := jsonBody(in)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, request{
		method:      http.MethodPut,
		url:         c.endpoint("documents", id),
		body:        body,
		contentType: "application/json",
		cookies:     authCookies(token),
	})
	if err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if err := decode(resp, &raw); err != nil {
		return nil, err
	}
	return decodeOne(raw)
}

// DeleteDocument removes a document.
func (c *Client) DeleteDocument(ctx context.Context, token, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrMissingID
	}

	resp, err := c.do(ctx, request{
		method:  http.MethodDelete,
		url:     c.endpoint("documents", id),
		cookies: authCookies(token),
	})
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

// UploadDocument sends the file and its metadata as multipart/form-data.
// The multipart body is streamed through a pipe.
func (c *Client) UploadDocument(ctx context.Context, token string, up Upload) (*Document, error) {
	if up.Body == nil {
		return nil, ErrEmptyFile
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeUpload(mw, up))
	}()

	resp, err := c.do(ctx, request{
		method:      http.MethodPost,
		url:         c.endpoint("documents", "upload"),
		body:        pr,
		contentType: mw.FormDataContentType(),
		cookies:     authCookies(token),
	})
	// unblock the writer if the request failed before draining the pipe
	_ = pr.Close()
	if err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if err := decode(resp, &raw); err != nil {
		return nil, err
	}
	return decodeOne(raw)
}

func writeUpload(mw *multipart.Writer, up Upload) error {
	fields := [][2]string{
		{"title", up.Title},
		{"description", up.Description},
		{"category", up.Category},
		{"language", up.Language},
	}
	for _, f := range fields {
		if f[1] == "" {
			continue
		}
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return err
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, up.FileName))
	ct := up.ContentType
	if ct == "" {
		ct = MIMEOctetStream
	}
	h.Set("Content-Type", ct)

	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, up.Body); err != nil {
		return err
	}
	return mw.Close()
}
