package services

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrUnsupportedFileType distinguishes a bad extension from a parser failure.
var ErrUnsupportedFileType = errors.New("unsupported file type")

// SupportedFileTypes lists the extractable document types.
func SupportedFileTypes() []string {
	return []string{"pdf", "docx", "txt"}
}

// FileTypeFromExt maps an extension (with or without dot) to a file type.
func FileTypeFromExt(ext string) (string, error) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "pdf":
		return "pdf", nil
	case "docx":
		return "docx", nil
	case "txt":
		return "txt", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFileType, ext)
	}
}

// ExtractText produces UTF-8 text from a file buffer. Document AI is tried
// first when configured; any failure there falls back to the local parser
// for the declared type.
func ExtractText(ctx context.Context, data []byte, fileType string) (string, error) {
	if DocumentAIConfigured() {
		text, err := extractWithDocumentAI(ctx, data, mimeTypeFor(fileType))
		if err == nil && strings.TrimSpace(text) != "" {
			return text, nil
		}
		if err != nil {
			log.Println("Document AI extraction failed, falling back to local parser:", err)
		}
	}

	switch fileType {
	case "pdf":
		return ExtractTextFromPDF(data)
	case "docx":
		return ExtractTextFromDOCX(data)
	case "txt":
		return string(data), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFileType, fileType)
	}
}

func ExtractTextFromPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("cannot open PDF: %w", err)
	}

	var textBuilder bytes.Buffer
	pages := reader.NumPage()
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		textBuilder.WriteString(content)
	}

	return textBuilder.String(), nil
}

// ExtractTextFromDOCX unzips the document and collects <w:t> runs.
func ExtractTextFromDOCX(data []byte) (string, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("cannot open DOCX: %w", err)
	}

	var docFile *zip.File
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", errors.New("DOCX has no word/document.xml")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	var buf bytes.Buffer
	decoder := xml.NewDecoder(rc)
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		if se, ok := tok.(xml.StartElement); ok && se.Name.Local == "t" {
			var text string
			if err := decoder.DecodeElement(&text, &se); err == nil {
				buf.WriteString(text + " ")
			}
		}
	}

	return strings.TrimSpace(buf.String()), nil
}

// CountWords splits on runs of whitespace and drops empty tokens. Stored word
// counts everywhere derive from this rule.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

func mimeTypeFor(fileType string) string {
	switch fileType {
	case "pdf":
		return "application/pdf"
	case "docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "text/plain"
	}
}
