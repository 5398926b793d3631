package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	pkgerrors "github.com/soundshelf/soundshelf-backend/pkg/errors"
	"github.com/soundshelf/soundshelf-backend/pkg/storage/local"
)

// FileField is the multipart field the audio blob must arrive under.
const FileField = "music"

// Text fields ride along in the same multipart body; cap them so a hostile
// client cannot smuggle a large payload outside the file part.
const maxTextFieldBytes = 64 * 1024

var allowedMimeTypes = map[string]struct{}{
	"audio/mpeg": {},
	"audio/wav":  {},
}

var errTooLarge = errors.New("upload exceeds size cap")

// BlobStore is the slice of the blob storage surface the pipeline needs.
type BlobStore interface {
	Save(ctx context.Context, name string, r io.Reader) (int64, error)
	Remove(name string) error
}

// Result carries the intake outcome: the collected text fields plus the
// generated filename of the stored blob. Filename is empty when the request
// carried no file part; that is not an intake error — the create workflow
// reports it as a validation failure alongside the other field checks.
type Result struct {
	Fields    url.Values
	Filename  string
	SizeBytes int64
}

// Pipeline streams a single-file multipart request into the blob store,
// validating type and size as the bytes arrive. Nothing is buffered in
// memory and no file survives a failed request.
type Pipeline struct {
	store    BlobStore
	maxBytes int64
}

func NewPipeline(store BlobStore, maxBytes int64) (*Pipeline, error) {
	if store == nil {
		return nil, errors.New("blob store required")
	}
	if maxBytes <= 0 {
		return nil, errors.New("max upload bytes must be positive")
	}
	return &Pipeline{store: store, maxBytes: maxBytes}, nil
}

// Intake consumes the request body part by part. Validation order follows
// the filter contract: type first, then size, first failure wins.
func (p *Pipeline) Intake(r *http.Request) (*Result, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "multipart/form-data body required")
	}

	result := &Result{Fields: url.Values{}}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			p.discard(result)
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed multipart body")
		}

		if part.FileName() == "" {
			if err := readTextField(result.Fields, part); err != nil {
				p.discard(result)
				return nil, err
			}
			continue
		}

		err = p.intakeFile(r.Context(), result, part)
		part.Close()
		if err != nil {
			p.discard(result)
			return nil, err
		}
	}

	return result, nil
}

func (p *Pipeline) intakeFile(ctx context.Context, result *Result, part *multipart.Part) error {
	if part.FormName() != FileField {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("unexpected file field %q, the audio file must be sent as %q", part.FormName(), FileField))
	}
	if result.Filename != "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "only one music file may be uploaded")
	}

	if err := checkMimeType(part.Header.Get("Content-Type")); err != nil {
		return err
	}

	name, err := local.GenerateName(filepath.Ext(part.FileName()))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generating stored filename")
	}

	written, err := p.store.Save(ctx, name, &cappedReader{r: part, remaining: p.maxBytes})
	if err != nil {
		if errors.Is(err, errTooLarge) {
			return pkgerrors.New(pkgerrors.CodePayloadTooLarge,
				fmt.Sprintf("music file exceeds the %d MiB limit", p.maxBytes/(1024*1024)))
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "storing uploaded file")
	}

	result.Filename = name
	result.SizeBytes = written
	return nil
}

// discard removes a blob already written when a later part fails, keeping
// the zero-files-on-failure invariant.
func (p *Pipeline) discard(result *Result) {
	if result.Filename == "" {
		return
	}
	_ = p.store.Remove(result.Filename)
	result.Filename = ""
}

func readTextField(fields url.Values, part *multipart.Part) error {
	data, err := io.ReadAll(io.LimitReader(part, maxTextFieldBytes+1))
	part.Close()
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "reading form field")
	}
	if len(data) > maxTextFieldBytes {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("form field %q is too large", part.FormName()))
	}
	fields.Add(part.FormName(), string(data))
	return nil
}

func checkMimeType(contentType string) error {
	clean := strings.TrimSpace(contentType)
	if clean == "" {
		return pkgerrors.New(pkgerrors.CodeUnsupportedMedia, "music file is missing a content type")
	}
	mediaType, _, err := mime.ParseMediaType(clean)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUnsupportedMedia, err, "music file content type is invalid")
	}
	if _, ok := allowedMimeTypes[strings.ToLower(mediaType)]; !ok {
		return pkgerrors.New(pkgerrors.CodeUnsupportedMedia,
			fmt.Sprintf("file type %q is not allowed, only audio/mpeg and audio/wav are accepted", mediaType))
	}
	return nil
}

// cappedReader fails the copy once more than remaining bytes have been read,
// so oversized uploads abort mid-stream instead of after full buffering.
type cappedReader struct {
	r         io.Reader
	remaining int64
}

func (cr *cappedReader) Read(p []byte) (int, error) {
	if cr.remaining < 0 {
		return 0, errTooLarge
	}
	if int64(len(p)) > cr.remaining+1 {
		p = p[:cr.remaining+1]
	}
	n, err := cr.r.Read(p)
	cr.remaining -= int64(n)
	if cr.remaining < 0 {
		return 0, errTooLarge
	}
	return n, err
}
