// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mirror

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// Client couples a Decoder to a Mirror: bytes in, session state out.
// It is the whole receive path for one controller connection.
type Client struct {
	decoder *Decoder
	mirror  *Mirror
	logger  *slog.Logger
}

// NewClient returns a Client with a fresh Mirror and a Decoder sized to
// MaxMessageSize.
func NewClient(options Options) *Client {
	mirror := New(options)
	return &Client{
		decoder: NewDecoder(MaxMessageSize, mirror.Dispatch),
		mirror:  mirror,
		logger:  mirror.logger,
	}
}

// Buffer returns the region to fill with received bytes. See
// Decoder.Buffer.
func (c *Client) Buffer() []byte {
	return c.decoder.Buffer()
}

// Commit reports n received bytes and applies every message they
// complete. See Decoder.Commit.
func (c *Client) Commit(n int) error {
	return c.decoder.Commit(n)
}

// Session returns the mirrored session, or nil before the first window
// sync.
func (c *Client) Session() *Session {
	return c.mirror.Session()
}

// Run reads the controller stream from reader until it ends, applying
// every message. It returns nil when the stream ends on a message
// boundary and io.ErrUnexpectedEOF when it ends mid-message.
//
// Protocol errors are fatal: Run logs the failure with its opcode and
// returns it, and the caller must tear down the connection. If ctx is
// cancelled and reader is an io.Closer, the reader is closed to unblock
// the pending read and Run returns ctx.Err().
func (c *Client) Run(ctx context.Context, reader io.Reader) error {
	if closer, ok := reader.(io.Closer); ok {
		stop := context.AfterFunc(ctx, func() { closer.Close() })
		defer stop()
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		count, readErr := reader.Read(c.decoder.Buffer())
		if err := c.decoder.Commit(count); err != nil {
			c.logFailure(err)
			return err
		}
		if readErr == nil {
			continue
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if errors.Is(readErr, io.EOF) {
			if pending := c.decoder.Pending(); pending > 0 {
				c.logger.Error("stream ended mid-message", "pending_bytes", pending)
				return io.ErrUnexpectedEOF
			}
			c.logger.Info("stream closed by controller")
			return nil
		}
		return fmt.Errorf("reading controller stream: %w", readErr)
	}
}

// logFailure records the diagnostic context of a fatal protocol error.
func (c *Client) logFailure(err error) {
	attributes := []any{"error", err}
	var protocolErr *ProtocolError
	if errors.As(err, &protocolErr) && protocolErr.Opcode != 0 {
		attributes = append(attributes, "opcode", protocolErr.Opcode.String())
	}
	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		attributes = append(attributes, "expected", decodeErr.Expected, "actual", decodeErr.Actual)
	}
	c.logger.Error("protocol violation, abandoning session", attributes...)
}
