// Package multipart streams a multipart/form-data request body into
// fields and files (§4.7), atop the standard library's mime/multipart
// reader (which already performs the boundary-delimited, non-buffering
// part split the spec describes) with fsroute's limits and strategy
// selection layered on top.
package multipart

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"os"
	"strings"

	"github.com/fsroute/fsroute"
	"github.com/fsroute/fsroute/errs"
)

// Strategy selects how file parts are materialized.
type Strategy string

const (
	// StrategyStream presents each file as an undrained reader; the
	// consumer is responsible for reading it. This is the default for
	// the zero Options value.
	StrategyStream Strategy = "stream"
	// StrategyMemory buffers each file fully into memory.
	StrategyMemory Strategy = "memory"
	// StrategyTemp spools each file to a temp file on disk; both Stream
	// and TempPath are set on the resulting UploadedFile. Cleanup of the
	// temp file is the caller's responsibility.
	StrategyTemp Strategy = "temp"
)

// Limits bounds a single parse call. Zero means "no limit" for each
// field independently.
type Limits struct {
	MaxFieldSize     int64
	MaxFileSize      int64
	MaxFiles         int
	AllowedMimeTypes []string // exact match or "type/*" wildcard; "*/*" accepts anything
}

// Options configures Parse.
type Options struct {
	Strategy Strategy
	Limits   Limits
	TempDir  string // os.TempDir() when empty, only used by StrategyTemp
}

// Result is the parsed multipart body. Repeated field/file names
// aggregate into a []string / []fsroute.UploadedFile preserving
// arrival order; a name seen once stays a bare string / UploadedFile.
type Result struct {
	Fields map[string]any
	Files  map[string]any
}

// Parse reads body (a multipart/form-data stream) per contentType and
// opts. It never buffers the whole body — only individual field/file
// parts, according to the selected Strategy.
func Parse(body io.Reader, contentType string, opts Options) (*Result, error) {
	boundary, err := extractBoundary(contentType)
	if err != nil {
		return nil, err
	}

	reader := multipart.NewReader(body, boundary)
	result := &Result{Fields: make(map[string]any), Files: make(map[string]any)}

	partCount := 0
	fileCount := 0

	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errs.NewParseError("multipart: " + err.Error())
		}
		partCount++

		name := part.FormName()
		filename := part.FileName()
		if !isFilePart(part) {
			data, err := readLimited(part, opts.Limits.MaxFieldSize, "maxFieldSize")
			if err != nil {
				return nil, err
			}
			appendField(result.Fields, name, string(data))
			continue
		}

		fileCount++
		if opts.Limits.MaxFiles > 0 && fileCount > opts.Limits.MaxFiles {
			return nil, errs.NewLimitParseError("too many files in request", "maxFiles")
		}

		mimeType := part.Header.Get("Content-Type")
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}
		if len(opts.Limits.AllowedMimeTypes) > 0 && !mimeAllowed(mimeType, opts.Limits.AllowedMimeTypes) {
			return nil, errs.NewParseError("multipart: disallowed mime type " + mimeType)
		}

		uploaded, err := materialize(part, name, filename, mimeType, opts)
		if err != nil {
			return nil, err
		}
		appendFile(result.Files, name, uploaded)
	}

	if partCount == 0 {
		return nil, errs.NewParseError("Empty multipart request")
	}
	return result, nil
}

// isFilePart mirrors the spec's rule: a part is a file if its
// Content-Disposition carries a filename parameter at all (even an
// empty one), and a field otherwise.
func isFilePart(part *multipart.Part) bool {
	_, params, err := mime.ParseMediaType(part.Header.Get("Content-Disposition"))
	if err != nil {
		return false
	}
	_, ok := params["filename"]
	return ok
}

func extractBoundary(contentType string) (string, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "multipart/form-data") {
		return "", errs.NewParseError("No valid multipart boundary found")
	}
	boundary, ok := params["boundary"]
	if !ok || boundary == "" {
		return "", errs.NewParseError("Missing boundary")
	}
	return boundary, nil
}

func readLimited(r io.Reader, limit int64, limitKind string) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, errs.NewLimitParseError("field exceeds "+limitKind, limitKind)
	}
	return data, nil
}

func materialize(part *multipart.Part, fieldName, filename, mimeType string, opts Options) (fsroute.UploadedFile, error) {
	uf := fsroute.UploadedFile{
		FieldName:    fieldName,
		OriginalName: filename,
		MimeType:     mimeType,
		Encoding:     part.Header.Get("Content-Transfer-Encoding"),
	}

	switch opts.Strategy {
	case StrategyMemory:
		var buf bytes.Buffer
		n, err := copyWithLimit(&buf, part, opts.Limits.MaxFileSize)
		if err != nil {
			return fsroute.UploadedFile{}, err
		}
		uf.Buffer = buf.Bytes()
		uf.Size = n
		return uf, nil

	case StrategyTemp:
		tmp, err := os.CreateTemp(opts.TempDir, "fsroute-upload-*")
		if err != nil {
			return fsroute.UploadedFile{}, errs.Wrap(err)
		}
		n, err := copyWithLimit(tmp, part, opts.Limits.MaxFileSize)
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
			return fsroute.UploadedFile{}, err
		}
		if _, err := tmp.Seek(0, io.SeekStart); err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
			return fsroute.UploadedFile{}, errs.Wrap(err)
		}
		uf.Stream = tmp
		uf.TempPath = tmp.Name()
		uf.Size = n
		return uf, nil

	default: // StrategyStream, or the zero value
		var stream io.Reader = part
		if opts.Limits.MaxFileSize > 0 {
			stream = &limitedReader{r: part, limit: opts.Limits.MaxFileSize}
		}
		uf.Stream = stream
		uf.Size = -1 // unknown until the caller drains Stream
		return uf, nil
	}
}

// copyWithLimit copies src into dst, failing with a maxFileSize
// ParseError the instant more than limit bytes would be written. limit
// <= 0 means unlimited.
func copyWithLimit(dst io.Writer, src io.Reader, limit int64) (int64, error) {
	if limit <= 0 {
		return io.Copy(dst, src)
	}
	n, err := io.CopyN(dst, src, limit)
	if err != nil && err != io.EOF {
		return n, err
	}
	if err == nil {
		var probe [1]byte
		if _, perr := src.Read(probe[:]); perr != io.EOF {
			return n, errs.NewLimitParseError("file exceeds maxFileSize", "maxFileSize")
		}
	}
	return n, nil
}

// limitedReader fails incrementally once more than limit bytes have
// been read, for the stream strategy where the total size isn't known
// up front (§4.7 "enforce limits incrementally").
type limitedReader struct {
	r     io.Reader
	limit int64
	read  int64
}

func (lr *limitedReader) Read(p []byte) (int, error) {
	n, err := lr.r.Read(p)
	lr.read += int64(n)
	if lr.read > lr.limit {
		return n, errs.NewLimitParseError("file exceeds maxFileSize", "maxFileSize")
	}
	return n, err
}

func mimeAllowed(mimeType string, allowed []string) bool {
	for _, pattern := range allowed {
		if pattern == "*/*" {
			return true
		}
		if prefix, ok := strings.CutSuffix(pattern, "/*"); ok {
			if strings.HasPrefix(mimeType, prefix+"/") {
				return true
			}
			continue
		}
		if pattern == mimeType {
			return true
		}
	}
	return false
}

func appendField(fields map[string]any, name, value string) {
	switch existing := fields[name].(type) {
	case nil:
		fields[name] = value
	case string:
		fields[name] = []string{existing, value}
	case []string:
		fields[name] = append(existing, value)
	}
}

func appendFile(files map[string]any, name string, uf fsroute.UploadedFile) {
	switch existing := files[name].(type) {
	case nil:
		files[name] = uf
	case fsroute.UploadedFile:
		files[name] = []fsroute.UploadedFile{existing, uf}
	case []fsroute.UploadedFile:
		files[name] = append(existing, uf)
	}
}
