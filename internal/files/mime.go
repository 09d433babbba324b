package files

import (
	"log"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

func init() {
	ensureMimeType(".md", "text/markdown; charset=utf-8")
	ensureMimeType(".csv", "text/csv; charset=utf-8")
	ensureMimeType(".log", "text/plain; charset=utf-8")
}

func ensureMimeType(ext, typ string) {
	if mime.TypeByExtension(ext) != "" {
		return
	}
	if err := mime.AddExtensionType(ext, typ); err != nil {
		log.Printf("files: failed to register MIME type for %s: %v", ext, err)
	}
}

// detectType picks the media type from the file extension and falls back to
// sniffing the content.
func detectType(name string, content []byte) string {
	if typ := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); typ != "" {
		return typ
	}
	return mimetype.Detect(content).String()
}
