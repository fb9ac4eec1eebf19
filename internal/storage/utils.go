package storage

import (
	"github.com/google/uuid"
)

// GenerateFileName returns a random blob name for an uploaded document, keeping its extension.
// The client file name never reaches the filesystem.
func GenerateFileName(extension string) string {
	name := uuid.New().String()
	if extension != "" && extension[0] != '.' {
		return name + "." + extension
	}
	return name + extension
}

// sizeWriter counts the bytes of a document while it is streamed to storage
type sizeWriter struct {
	size int64
}

func (sw *sizeWriter) Write(p []byte) (int, error) {
	sw.size += int64(len(p))
	return len(p), nil
}

// Size returns the number of bytes streamed so far
func (sw *sizeWriter) Size() int64 {
	return sw.size
}

// NewSizeWriter creates a counter to tee an upload into
func NewSizeWriter() *sizeWriter {
	return &sizeWriter{}
}
