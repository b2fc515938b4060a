// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package recording

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Magic identifies a recording file.
var Magic = [4]byte{'B', 'M', 'R', 'C'}

// FormatVersion is the header layout this package writes.
const FormatVersion = 1

const headerSize = len(Magic) + 2

// ErrNotRecording is returned when a file does not start with Magic.
var ErrNotRecording = errors.New("recording: not a recording file")

// Writer writes a recording. Bytes written to it are compressed into
// the body; Close flushes the compressor and closes the underlying
// destination if it is an io.Closer.
type Writer struct {
	compression Compression
	destination io.Writer
	body        io.WriteCloser
	closed      bool
}

// NewWriter writes a recording header to destination and returns a
// Writer for the body.
func NewWriter(destination io.Writer, compression Compression) (*Writer, error) {
	header := [headerSize]byte{Magic[0], Magic[1], Magic[2], Magic[3], FormatVersion, byte(compression)}
	if compression > CompressionZstd {
		return nil, fmt.Errorf("unsupported recording compression %s", compression)
	}
	if _, err := destination.Write(header[:]); err != nil {
		return nil, fmt.Errorf("writing recording header: %w", err)
	}

	var body io.WriteCloser
	switch compression {
	case CompressionNone:
		body = nopWriteCloser{destination}
	case CompressionLZ4:
		body = lz4.NewWriter(destination)
	case CompressionZstd:
		encoder, err := zstd.NewWriter(destination, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("creating zstd encoder: %w", err)
		}
		body = encoder
	}
	return &Writer{compression: compression, destination: destination, body: body}, nil
}

// Create creates (or truncates) the file at path and returns a Writer
// recording into it.
func Create(path string, compression Compression) (*Writer, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating recording: %w", err)
	}
	writer, err := NewWriter(file, compression)
	if err != nil {
		file.Close()
		os.Remove(path)
		return nil, err
	}
	return writer, nil
}

// Compression returns the body compression.
func (w *Writer) Compression() Compression {
	return w.compression
}

// Write appends stream bytes to the recording.
func (w *Writer) Write(data []byte) (int, error) {
	if w.closed {
		return 0, os.ErrClosed
	}
	return w.body.Write(data)
}

// Close finishes the body and closes the destination if it is an
// io.Closer. Calling Close more than once returns nil.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	bodyErr := w.body.Close()
	var destinationErr error
	if closer, ok := w.destination.(io.Closer); ok {
		destinationErr = closer.Close()
	}
	if bodyErr != nil {
		return fmt.Errorf("finishing recording body: %w", bodyErr)
	}
	return destinationErr
}

// Reader reads the body of a recording.
type Reader struct {
	compression Compression
	source      io.Reader
	body        io.Reader
	release     func()
}

// NewReader reads and checks the recording header from source and
// returns a Reader for the decompressed body.
func NewReader(source io.Reader) (*Reader, error) {
	buffered := bufio.NewReader(source)
	var header [headerSize]byte
	if _, err := io.ReadFull(buffered, header[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: file shorter than the header", ErrNotRecording)
		}
		return nil, fmt.Errorf("reading recording header: %w", err)
	}
	if !bytes.Equal(header[:len(Magic)], Magic[:]) {
		return nil, fmt.Errorf("%w: magic %q", ErrNotRecording, header[:len(Magic)])
	}
	if version := header[len(Magic)]; version != FormatVersion {
		return nil, fmt.Errorf("unsupported recording format version %d (this build reads %d)", version, FormatVersion)
	}

	reader := &Reader{compression: Compression(header[len(Magic)+1]), source: source, release: func() {}}
	switch reader.compression {
	case CompressionNone:
		reader.body = buffered
	case CompressionLZ4:
		reader.body = lz4.NewReader(buffered)
	case CompressionZstd:
		decoder, err := zstd.NewReader(buffered)
		if err != nil {
			return nil, fmt.Errorf("creating zstd decoder: %w", err)
		}
		reader.body = decoder
		reader.release = decoder.Close
	default:
		return nil, fmt.Errorf("unsupported recording compression %s", reader.compression)
	}
	return reader, nil
}

// Open opens the recording at path.
func Open(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening recording: %w", err)
	}
	reader, err := NewReader(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reader, nil
}

// Compression returns the body compression named in the header.
func (r *Reader) Compression() Compression {
	return r.compression
}

// Read reads decompressed stream bytes.
func (r *Reader) Read(buffer []byte) (int, error) {
	return r.body.Read(buffer)
}

// Close releases the decompressor and closes the source if it is an
// io.Closer.
func (r *Reader) Close() error {
	r.release()
	if closer, ok := r.source.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
