package fileops

import (
	"bytes"
	"context"
	"encoding/base64"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/mcpgate/mcpgate/internal/errors"
	"github.com/mcpgate/mcpgate/internal/securefs"
)

// DefaultEncoding is the character set used when a read request does not
// name one.
const DefaultEncoding = "utf-8"

// Reader loads file content from the sandbox, decoding it as text under a
// requested character set with a binary-safe base64 fallback.
type Reader struct {
	sfs    *securefs.SecureFS
	logger *slog.Logger
}

// NewReader creates a Reader over the given sandbox.
func NewReader(sfs *securefs.SecureFS, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{sfs: sfs, logger: logger}
}

// Read loads the file at rawPath and decodes it under encodingName (default
// UTF-8). If the bytes are not valid under that encoding, the full raw byte
// stream is returned base64-encoded instead, never a partial decode.
func (r *Reader) Read(ctx context.Context, rawPath, encodingName string) (ReadResult, error) {
	if err := ctx.Err(); err != nil {
		return ReadResult{}, err
	}

	canonical, err := r.sfs.Resolve(rawPath)
	if err != nil {
		return ReadResult{}, err
	}

	info, err := r.sfs.Stat(canonical)
	if err != nil {
		if os.IsNotExist(err) {
			return ReadResult{}, errors.Newf("file not found: %s", rawPath).
				Category(errors.CategoryNotFound).
				Build()
		}
		return ReadResult{}, errors.Wrap(err).
			Category(errors.CategoryFileIO).
			Context("path", canonical).
			Build()
	}

	if info.IsDir() {
		return ReadResult{}, errors.Newf("cannot read directory: %s", rawPath).
			Category(errors.CategoryValidation).
			Build()
	}

	if encodingName == "" {
		encodingName = DefaultEncoding
	}
	encodingName = strings.ToLower(encodingName)

	// Resolve the character set up front; an unrecognized name is a bad
	// request, not binary content.
	var enc encoding.Encoding
	if !isUTF8Name(encodingName) {
		enc, err = htmlindex.Get(encodingName)
		if err != nil {
			return ReadResult{}, errors.Newf("unknown character encoding: %s", encodingName).
				Category(errors.CategoryValidation).
				Build()
		}
	}

	data, err := r.sfs.ReadFile(canonical)
	if err != nil {
		if errors.Is(err, securefs.ErrFileTooLarge) {
			return ReadResult{}, errors.Wrap(err).
				Category(errors.CategoryLimit).
				FileContext(canonical, info.Size()).
				Build()
		}
		return ReadResult{}, errors.Wrap(err).
			Category(errors.CategoryFileIO).
			Context("path", canonical).
			Build()
	}

	if text, ok := decode(data, enc); ok {
		return ReadResult{Content: text, Encoding: encodingName}, nil
	}

	// Binary or differently encoded content: encode the complete original
	// byte stream, never the output of the failed decode attempt.
	r.logger.Debug("content not valid under requested encoding, returning base64",
		"path", canonical, "encoding", encodingName)
	return ReadResult{
		Content:  base64.StdEncoding.EncodeToString(data),
		Encoding: EncodingBase64,
	}, nil
}

// decode attempts a strict decode of data under enc, where a nil enc means
// UTF-8. The second return value is false when the bytes are not valid.
func decode(data []byte, enc encoding.Encoding) (string, bool) {
	// UTF-8 validity can be checked exactly
	if enc == nil {
		if utf8.Valid(data) {
			return string(data), true
		}
		return "", false
	}

	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", false
	}

	// x/text decoders substitute U+FFFD for undecodable input rather than
	// failing; treat any replacement character as a failed decode.
	if bytes.ContainsRune(decoded, utf8.RuneError) {
		return "", false
	}

	return string(decoded), true
}

func isUTF8Name(name string) bool {
	switch name {
	case "utf-8", "utf8":
		return true
	default:
		return false
	}
}
