package fsroute

import "io"

// UploadedFile is a single file part parsed from a multipart/form-data
// request body. Which of Buffer, Stream, TempPath are populated depends
// on the parser strategy that produced it (§3, §4.7): Buffer for
// memory, Stream for stream, and both Stream and TempPath for temp.
type UploadedFile struct {
	FieldName    string
	OriginalName string
	Encoding     string
	MimeType     string
	Size         int64

	Buffer   []byte
	Stream   io.Reader
	TempPath string
}
