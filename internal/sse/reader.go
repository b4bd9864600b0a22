// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package sse

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
)

// =============================================================================
// CONSTANTS
// =============================================================================

// MaxEventSize is the maximum allowed size for a single SSE event (64KB).
const MaxEventSize = 64 * 1024

// doneMarker is the literal payload providers send to terminate a stream.
var doneMarker = []byte("[DONE]")

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrDone is returned by Next after the stream's [DONE] marker has been
	// consumed. No further reads occur once it is returned.
	ErrDone = errors.New("stream finished")

	// ErrEventTooLarge is returned when a single event exceeds MaxEventSize.
	ErrEventTooLarge = errors.New("sse event exceeds size limit")
)

// =============================================================================
// READER
// =============================================================================

// Reader parses Server-Sent Events from a byte stream.
//
// Only data fields are surfaced; event, id, retry, comment, and unrecognized
// lines are skipped per the framing convention. A payload equal to the
// literal [DONE] terminates the reader.
type Reader struct {
	reader *bufio.Reader
	done   bool
}

// NewReader creates a new SSE reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		reader: bufio.NewReader(r),
	}
}

// Next reads the next event's data payload.
//
// It returns ErrDone once the [DONE] marker has been seen, io.EOF at end of
// stream, and the underlying read error on transport failure. A partial
// event in flight when a transport error hits is discarded, never returned.
func (r *Reader) Next() ([]byte, error) {
	if r.done {
		return nil, ErrDone
	}

	var dataLines [][]byte
	size := 0

	for {
		line, err := r.reader.ReadBytes('\n')
		if err != nil {
			if err == io.EOF {
				// A final event without a trailing blank line is still
				// delivered; a clean EOF stays EOF.
				if len(dataLines) > 0 {
					return r.emit(dataLines)
				}
				return nil, io.EOF
			}
			return nil, err
		}

		line = bytes.TrimRight(line, "\r\n")

		// Blank line dispatches the accumulated event.
		if len(line) == 0 {
			if len(dataLines) > 0 {
				return r.emit(dataLines)
			}
			continue
		}

		if !bytes.HasPrefix(line, []byte("data:")) {
			// Protocol tolerance: skip event:, id:, retry:, comments,
			// and anything unrecognized.
			continue
		}

		data := bytes.TrimSpace(line[len("data:"):])
		size += len(data)
		if size > MaxEventSize {
			return nil, fmt.Errorf("%w: %d bytes", ErrEventTooLarge, size)
		}
		dataLines = append(dataLines, data)
	}
}

// emit joins the event's data lines and applies [DONE] detection.
func (r *Reader) emit(dataLines [][]byte) ([]byte, error) {
	data := bytes.Join(dataLines, []byte("\n"))
	if bytes.Equal(data, doneMarker) {
		r.done = true
		return nil, ErrDone
	}
	return data, nil
}

// Done reports whether the terminal [DONE] marker has been consumed.
func (r *Reader) Done() bool {
	return r.done
}
