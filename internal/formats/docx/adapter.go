package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mind-engage/mindengage-qbank/internal/formats"
)

func init() {
	formats.Register(New(), ".docx")
}

var ErrNoDocument = errors.New("word/document.xml not found in archive")

// MaxDocumentBytes bounds the uncompressed size of word/document.xml.
const MaxDocumentBytes = 64 << 20

type Adapter struct{}

func New() *Adapter { return &Adapter{} }

// Flatten returns one line per paragraph. Table cells hold paragraphs of their
// own, so each cell lands on its own line too. Soft line breaks start a new line.
func (a *Adapter) Flatten(ctx context.Context, r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return "", fmt.Errorf("open zip: %w", err)
	}
	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", ErrNoDocument
	}
	rc, err := doc.Open()
	if err != nil {
		return "", fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()
	return paragraphs(ctx, io.LimitReader(rc, MaxDocumentBytes))
}

func paragraphs(ctx context.Context, r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)
	var (
		out    strings.Builder
		cur    strings.Builder
		inText bool
	)
	endLine := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			out.WriteString(s)
			out.WriteByte('\n')
		}
		cur.Reset()
	}
	for n := 0; ; n++ {
		if n%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return "", err
			}
		}
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decode document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t": // <w:t>
				inText = true
			case "tab":
				cur.WriteByte(' ')
			case "br", "cr":
				endLine()
			}
		case xml.CharData:
			if inText {
				cur.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p": // </w:p>
				endLine()
			}
		}
	}
	endLine()
	return out.String(), nil
}
