// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package orchestrator

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// AllowedExtensions lists the video containers the backend accepts.
var AllowedExtensions = []string{".mp4", ".mov", ".m4v", ".webm", ".avi", ".mkv"}

// Allowed reports whether name carries an accepted video extension.
func Allowed(name string) bool {
	return slices.Contains(AllowedExtensions, strings.ToLower(filepath.Ext(name)))
}

// File is a user-chosen video. Size is -1 when unknown.
type File struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
}

// OpenFile describes a file on disk.
func OpenFile(path string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	return &File{
		Name: filepath.Base(path),
		Size: info.Size(),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}

// OpenVideo is OpenFile limited to accepted video extensions. Every failure
// is a user input failure.
func OpenVideo(path string) (*File, error) {
	if !Allowed(path) {
		return nil, NewUserInput(ReasonUnsupported, MsgUnsupported)
	}
	f, err := OpenFile(path)
	if err != nil {
		fail := NewUserInput(ReasonNoFile, MsgSelectVideo)
		fail.Err = err
		return nil, fail
	}
	return f, nil
}

// BytesFile wraps an in-memory payload.
func BytesFile(name string, data []byte) *File {
	return &File{
		Name: name,
		Size: int64(len(data)),
		Open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
}
