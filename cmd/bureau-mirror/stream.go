// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"

	"github.com/bureau-foundation/termmirror/lib/config"
	"github.com/bureau-foundation/termmirror/lib/recording"
)

// stream is the controller byte stream, optionally teed into a
// recording.
type stream struct {
	reader   io.Reader
	source   io.Closer
	recorder *recording.Writer

	closeOnce sync.Once
	closeErr  error
}

func (s *stream) Read(buffer []byte) (int, error) {
	return s.reader.Read(buffer)
}

// Close closes the source, unblocking a pending Read. It may be called
// from the cancellation path while Read is running and again at
// shutdown; only the first call has an effect.
func (s *stream) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.source.Close()
		if errors.Is(s.closeErr, net.ErrClosed) {
			s.closeErr = nil
		}
	})
	return s.closeErr
}

// Finish closes the source and then the recording. Call it only after
// the last Read has returned.
func (s *stream) Finish() error {
	sourceErr := s.Close()
	var recordErr error
	if s.recorder != nil {
		recordErr = s.recorder.Close()
	}
	return errors.Join(sourceErr, recordErr)
}

// openStream opens the replay file when replayPath is set, otherwise
// dials the configured controller socket.
func openStream(ctx context.Context, cfg *config.Config, replayPath string, logger *slog.Logger) (*stream, error) {
	var source io.ReadCloser
	if replayPath != "" {
		reader, err := recording.Open(replayPath)
		if err != nil {
			return nil, err
		}
		logger.Info("replaying recording", "path", replayPath, "compression", reader.Compression().String())
		source = reader
	} else {
		if cfg.Connection.Address == "" {
			return nil, fmt.Errorf("no controller address: use --connect, set connection.address, or use --replay")
		}
		var dialer net.Dialer
		connection, err := dialer.DialContext(ctx, cfg.Connection.Network, cfg.Connection.Address)
		if err != nil {
			return nil, fmt.Errorf("connecting to controller: %w", err)
		}
		logger.Info("connected to controller", "network", cfg.Connection.Network, "address", cfg.Connection.Address)
		source = connection
	}

	result := &stream{reader: source, source: source}
	if cfg.Recording.Path != "" {
		compression := parseCompression(cfg.Recording.Compression)
		recorder, err := recording.Create(cfg.Recording.Path, compression)
		if err != nil {
			source.Close()
			return nil, err
		}
		logger.Info("recording stream", "path", cfg.Recording.Path, "compression", compression.String())
		result.recorder = recorder
		result.reader = io.TeeReader(source, recorder)
	}
	return result, nil
}
