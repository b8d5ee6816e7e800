// Package backend is a client for the REST backend that stores educational
// materials and authenticates administrators.
//
// Documents:
//
//	client, err := backend.NewClient(cfg.BackendURL)
//	docs, err := client.ListDocuments(ctx)
//	doc, err := client.GetDocument(ctx, id)
//	doc, err = client.UpdateDocument(ctx, token, id, backend.DocumentInput{Title: "Nets"})
//	err = client.DeleteDocument(ctx, token, id)
//
// Admin uploads are validated by OpenUpload (size and sniffed MIME type)
// before UploadDocument streams them as multipart/form-data.
//
// Auth calls return a Session whose Cookies are the backend's auth-token and
// refreshToken cookies with the domain cleared, ready to be set on the
// browser response.
//
// Non-2xx responses become *APIError. 404 unwraps to ErrNotFound and
// 401/403 to ErrUnauthorized.
package backend
