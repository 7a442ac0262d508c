package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// UnsupportedTypeError reports a media type with no registered decoder.
type UnsupportedTypeError struct {
	MimeType string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported mime type: %s", e.MimeType)
}

// MalformedDocumentError wraps a decoder failure. Extraction is deterministic,
// so a malformed document is permanent for that input.
type MalformedDocumentError struct {
	MimeType string
	Err      error
}

func (e *MalformedDocumentError) Error() string {
	return fmt.Sprintf("malformed document mime=%s: %v", e.MimeType, e.Err)
}

func (e *MalformedDocumentError) Unwrap() error { return e.Err }

// ExtractTextFromBytes extracts plain text from an in-memory payload.
// An empty buffer yields an empty string for every supported type.
func ExtractTextFromBytes(ctx context.Context, data []byte, mimeType string, fileName string) (text string, err error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	normalized := normalizeMimeType(mimeType, fileName, data)

	var decode func([]byte) (string, error)
	switch {
	case normalized == mimePDF:
		decode = extractPDF
	case normalized == mimeDOCX:
		decode = extractDOCX
	case strings.HasPrefix(normalized, "text/"):
		decode = extractPlain
	default:
		return "", &UnsupportedTypeError{MimeType: normalized}
	}

	if len(data) == 0 {
		return "", nil
	}

	// The PDF reader can panic on corrupt cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = &MalformedDocumentError{MimeType: normalized, Err: fmt.Errorf("%v", r)}
		}
	}()

	out, decodeErr := decode(data)
	if decodeErr != nil {
		return "", &MalformedDocumentError{MimeType: normalized, Err: decodeErr}
	}
	return out, nil
}

func extractPlain(data []byte) (string, error) {
	return string(data), nil
}

func extractPDF(data []byte) (string, error) {
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	readerAt := bytes.NewReader(data)
	zr, err := zip.NewReader(readerAt, int64(len(data)))
	if err != nil {
		return "", err
	}

	var docFile *zip.File
	for _, f := range zr.File {
		name := strings.ReplaceAll(f.Name, "\\", "/")
		if name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", errors.New("document.xml file not found")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}

	return stripDocxXML(string(raw)), nil
}

func stripDocxXML(raw string) string {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return raw
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.WriteString(string(t))
		case xml.EndElement:
			if t.Name.Local == "p" || t.Name.Local == "br" {
				if last := buf.Len(); last > 0 {
					buf.WriteString("\n")
				}
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

func normalizeMimeType(mimeType string, fileName string, data []byte) string {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	if clean != "application/zip" && clean != "application/octet-stream" {
		return clean
	}

	if mapped := mapOOXMLFromZip(data); mapped != "" {
		return mapped
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".docx":
		return mimeDOCX
	case ".pdf":
		return mimePDF
	case ".txt", ".md":
		return "text/plain"
	default:
		return clean
	}
}

func mapOOXMLFromZip(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	readerAt := bytes.NewReader(data)
	zr, err := zip.NewReader(readerAt, int64(len(data)))
	if err != nil {
		return ""
	}
	for _, f := range zr.File {
		name := strings.ReplaceAll(f.Name, "\\", "/")
		if name == "word/document.xml" {
			return mimeDOCX
		}
	}
	return ""
}
