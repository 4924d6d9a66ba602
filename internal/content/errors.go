package content

import "errors"

// Remote-operation error taxonomy. Store and uploader implementations wrap
// their failures with these sentinels so callers can classify without
// depending on driver error types.
var (
	ErrNotFound     = errors.New("document not found")
	ErrRemoteWrite  = errors.New("remote write failed")
	ErrRemoteRead   = errors.New("remote read failed")
	ErrRemoteUpload = errors.New("asset upload failed")
)
