package api

import (
	"archive/zip"
	"bytes"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mosaic-lumen/threshold/internal/identity"
)

// Plain-text extensions passed through unmodified.
var passthroughExts = map[string]bool{
	".txt": true,
	".md":  true,
	".csv": true,
	".rtf": true,
}

var (
	docxParaRe = regexp.MustCompile(`</w:p>`)
	docxTagRe  = regexp.MustCompile(`<[^>]+>`)
)

// HandleParseFile handles POST /api/parse-file: extracts plain text from an
// uploaded document so the client can attach it to a chat message.
func (h *Handler) HandleParseFile(w http.ResponseWriter, r *http.Request) {
	if identity.UserIDFromContext(r.Context()) == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.Stream.MaxRequestBodySize)
	file, header, err := r.FormFile("file")
	if err != nil {
		Error(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		Error(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	var text string
	switch {
	case passthroughExts[ext]:
		text = string(data)
	case ext == ".docx":
		text, err = extractDocxText(data)
		if err != nil {
			slog.Warn("docx extraction failed", "error", err, "filename", header.Filename)
			Error(w, http.StatusUnprocessableEntity, "could not read document")
			return
		}
	default:
		Error(w, http.StatusUnsupportedMediaType,
			fmt.Sprintf("unsupported file type %q: use .txt, .md, .csv, .rtf, or .docx", ext))
		return
	}

	JSON(w, http.StatusOK, map[string]string{
		"filename": header.Filename,
		"text":     text,
	})
}

// extractDocxText pulls the readable text out of a docx archive: paragraph
// closes become newlines, every other tag is dropped, entities unescaped.
func extractDocxText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx archive: %w", err)
	}
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open document.xml: %w", err)
		}
		raw, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("read document.xml: %w", err)
		}
		text := docxParaRe.ReplaceAllString(string(raw), "\n")
		text = docxTagRe.ReplaceAllString(text, "")
		return strings.TrimSpace(html.UnescapeString(text)), nil
	}
	return "", fmt.Errorf("no document body in archive")
}
