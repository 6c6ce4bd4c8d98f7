package text

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/mind-engage/mindengage-qbank/internal/formats"
)

func init() {
	formats.Register(New(), ".txt", ".text", ".md")
}

type Adapter struct{}

func New() *Adapter { return &Adapter{} }

// Flatten strips a UTF-8 byte order mark and normalizes line endings to "\n".
// Input that is not valid UTF-8 is decoded as GB18030, the usual encoding of
// question banks saved by older Chinese editors.
func (a *Adapter) Flatten(ctx context.Context, r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if b, err = Decode(b); err != nil {
		return "", err
	}
	return Normalize(string(b)), nil
}

// Decode drops a UTF-8 byte order mark and transcodes GB18030 input to UTF-8.
func Decode(b []byte) ([]byte, error) {
	b = bytes.TrimPrefix(b, []byte("\xef\xbb\xbf"))
	if utf8.Valid(b) {
		return b, nil
	}
	out, err := simplifiedchinese.GB18030.NewDecoder().Bytes(b)
	if err != nil {
		return nil, fmt.Errorf("decode gb18030: %w", err)
	}
	return out, nil
}

// Normalize converts CRLF and lone CR line endings to LF.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
