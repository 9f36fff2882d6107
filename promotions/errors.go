package promotions

import (
	"errors"
	"strings"
)

// Failure kinds of the repository. Match them with errors.Is.
var (
	ErrRemoteRead = errors.New("promotions could not be loaded")
	ErrUpload     = errors.New("promotion image upload failed")
	// ErrWrite means the image was uploaded but its document was not written:
	// the blob at Error.StoragePath is orphaned.
	ErrWrite = errors.New("promotion record write failed")
	// ErrDeleteBlob means nothing was removed.
	ErrDeleteBlob = errors.New("promotion image delete failed")
	// ErrDeleteDoc means the image is gone but the document remains.
	ErrDeleteDoc  = errors.New("promotion record delete failed")
	ErrEmptyImage = errors.New("promotion image is empty")
)

// Error carries the kind of failure plus the resources involved, so a
// half-finished create or delete can be reconciled out of band.
type Error struct {
	Kind        error
	StoragePath string
	DocumentID  string
	Err         error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.DocumentID != "" {
		b.WriteString(" (document ")
		b.WriteString(e.DocumentID)
		b.WriteString(")")
	}
	if e.StoragePath != "" {
		b.WriteString(" (blob ")
		b.WriteString(e.StoragePath)
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// Orphaned reports whether the failure left a blob or document without its
// counterpart.
func (e *Error) Orphaned() bool {
	return e.Kind == ErrWrite || e.Kind == ErrDeleteDoc
}
