package output

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Writer is the interface for script output destinations.
type Writer interface {
	// Write sends serialized bytes to the output destination.
	Write(data []byte) error
}

// StdoutWriter writes the serialized script to os.Stdout.
type StdoutWriter struct {
	out io.Writer
}

// NewStdoutWriter creates a writer that sends output to the given writer.
// If w is nil, os.Stdout is used.
func NewStdoutWriter(w io.Writer) *StdoutWriter {
	if w == nil {
		w = os.Stdout
	}

	return &StdoutWriter{out: w}
}

// Write sends data to stdout.
func (sw *StdoutWriter) Write(data []byte) error {
	_, err := sw.out.Write(data)
	if err != nil {
		return fmt.Errorf("writing to stdout: %w", err)
	}

	return nil
}

// FileWriter writes serialized output to a file, creating parent
// directories as needed. Output is encoded as UTF-8 with a byte-order mark
// unless another encoding is configured.
type FileWriter struct {
	path     string
	perm     os.FileMode
	encoding encoding.Encoding
	logger   *slog.Logger
}

// FileWriterOption configures a FileWriter.
type FileWriterOption func(*FileWriter)

// WithPermissions overrides the default file permissions (0644).
func WithPermissions(perm os.FileMode) FileWriterOption {
	return func(fw *FileWriter) {
		fw.perm = perm
	}
}

// WithEncoding overrides the default UTF-8 BOM encoding.
func WithEncoding(enc encoding.Encoding) FileWriterOption {
	return func(fw *FileWriter) {
		fw.encoding = enc
	}
}

// WithLogger sets a logger for the FileWriter.
func WithLogger(logger *slog.Logger) FileWriterOption {
	return func(fw *FileWriter) {
		fw.logger = logger
	}
}

// NewFileWriter creates a writer that writes to the specified file path.
func NewFileWriter(path string, opts ...FileWriterOption) *FileWriter {
	fw := &FileWriter{
		path:     path,
		perm:     0o644,
		encoding: unicode.UTF8BOM,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(fw)
	}

	return fw
}

// Write encodes data, creates parent directories and writes the file. data
// must be valid UTF-8.
// Encoding happens before the file is touched, so an encoding failure
// leaves any existing file intact.
func (fw *FileWriter) Write(data []byte) error {
	encoder := transform.Chain(encoding.UTF8Validator, fw.encoding.NewEncoder())

	encoded, _, err := transform.Bytes(encoder, data)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", fw.path, err)
	}

	dir := filepath.Dir(fw.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	if _, err := os.Stat(fw.path); err == nil {
		fw.logger.Warn("overwriting existing file", slog.String("path", fw.path))
	}

	if err := os.WriteFile(fw.path, encoded, fw.perm); err != nil {
		return fmt.Errorf("writing file %s: %w", fw.path, err)
	}

	return nil
}

// Path returns the output file path.
func (fw *FileWriter) Path() string {
	return fw.path
}
