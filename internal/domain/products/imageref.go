package products

import "mime/multipart"

// ImageRef is the dual representation an image field carries while editing:
// a freshly selected file awaiting upload, an already-persisted reference
// (URL or stored filename), or neither. A required image field is satisfied
// when either side is present; which one is sent is decided at submission.
type ImageRef struct {
	NewFile  *multipart.FileHeader
	Existing string
}

// Resolved reports whether the field satisfies a "required image" check.
func (r ImageRef) Resolved() bool {
	return r.NewFile != nil || r.Existing != ""
}

// IsNew reports whether submission should upload a fresh binary. A new file
// wins over a still-present existing reference.
func (r ImageRef) IsNew() bool {
	return r.NewFile != nil
}
