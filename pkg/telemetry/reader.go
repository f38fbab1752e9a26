package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	StartMarker = 'S'
	OpenBrace   = '{'
	EndMarker   = 'E'

	DefaultTimeout = 2 * time.Second

	// Frames from the car are a few hundred bytes; anything much larger means
	// we've lost an end marker.
	maxPayloadLen = 4096
	readChunkLen  = 64
)

var (
	ErrFramingTimeout   = errors.New("framing timeout")
	ErrMalformedFrame   = errors.New("malformed frame")
	ErrDecode           = errors.New("decode error")
	ErrMalformedPayload = errors.New("malformed payload")
)

// streamClosedError is returned when the source hits EOF before a frame
// completes.  It matches both ErrMalformedFrame and io.EOF.
type streamClosedError struct {
	st state
}

func (e streamClosedError) Error() string {
	return fmt.Sprintf("%v: stream closed in state %v", ErrMalformedFrame, e.st)
}

func (e streamClosedError) Is(target error) bool {
	return target == ErrMalformedFrame || target == io.EOF
}

// Frame is one decoded sensor report.
type Frame struct {
	Sensor []float64
}

type state int

const (
	seekStart state = iota
	seekOpenBrace
	accumulate
	done
)

func (s state) String() string {
	switch s {
	case seekStart:
		return "SEEK_START"
	case seekOpenBrace:
		return "SEEK_OPEN_BRACE"
	case accumulate:
		return "ACCUMULATE"
	case done:
		return "DONE"
	}
	return "UNKNOWN"
}

// Clock abstracts time.Now for deadline tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

type Config struct {
	// Timeout bounds the time taken to read one whole frame.
	Timeout time.Duration
	Clock   Clock
}

// Reader extracts frames of the form
//
//	SSS{"sensor":[...]}EEE
//
// from a byte stream.  The underlying reader may return (0, nil) when it has no
// data, as a serial port with a read timeout does; the frame deadline is
// rechecked after every read.
type Reader struct {
	src     io.Reader
	timeout time.Duration
	clock   Clock

	buf     []byte
	pending []byte
}

func NewReader(src io.Reader, cfg Config) *Reader {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Clock == nil {
		cfg.Clock = systemClock{}
	}
	return &Reader{
		src:     src,
		timeout: cfg.Timeout,
		clock:   cfg.Clock,
		buf:     make([]byte, readChunkLen),
	}
}

// ReadFrame reads the next frame.  Bytes after the frame's end marker are kept
// for the next call.
func (r *Reader) ReadFrame(ctx context.Context) (Frame, error) {
	deadline := r.clock.Now().Add(r.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	st := seekStart
	var payload []byte
	for st != done {
		if len(r.pending) == 0 {
			if err := r.fill(ctx, deadline, st); err != nil {
				return Frame{}, err
			}
			continue
		}
		c := r.pending[0]
		r.pending = r.pending[1:]

		switch st {
		case seekStart:
			if c == StartMarker {
				st = seekOpenBrace
			}
		case seekOpenBrace:
			if c == OpenBrace {
				payload = append(payload, c)
				st = accumulate
			}
		case accumulate:
			switch {
			case c == EndMarker:
				st = done
			case c >= 0x80:
				return Frame{}, errors.Wrapf(ErrDecode, "non-ASCII byte 0x%02x in payload", c)
			case len(payload) >= maxPayloadLen:
				return Frame{}, errors.Wrapf(ErrMalformedFrame, "payload longer than %d bytes", maxPayloadLen)
			default:
				payload = append(payload, c)
			}
		}
	}
	return parsePayload(payload)
}

func (r *Reader) fill(ctx context.Context, deadline time.Time, st state) error {
	for {
		if err := ctx.Err(); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return errors.Wrapf(ErrFramingTimeout, "in state %v", st)
			}
			return err
		}
		if !r.clock.Now().Before(deadline) {
			return errors.Wrapf(ErrFramingTimeout, "in state %v", st)
		}
		n, err := r.src.Read(r.buf)
		if n > 0 {
			r.pending = r.buf[:n]
			return nil
		}
		if err == io.EOF {
			return streamClosedError{st: st}
		} else if err != nil {
			return errors.Wrap(err, "failed to read from serial")
		}
	}
}

func parsePayload(payload []byte) (Frame, error) {
	var msg struct {
		Sensor *[]float64 `json:"sensor"`
	}
	dec := json.NewDecoder(bytes.NewReader(payload))
	if err := dec.Decode(&msg); err != nil {
		log.Debug().Bytes("payload", payload).Msg("Bad telemetry payload")
		return Frame{}, errors.Wrapf(ErrMalformedPayload, "%v", err)
	}
	if dec.More() {
		return Frame{}, errors.Wrap(ErrMalformedPayload, "trailing data after JSON object")
	}
	if msg.Sensor == nil {
		return Frame{}, errors.Wrap(ErrMalformedPayload, `missing "sensor" field`)
	}
	return Frame{Sensor: *msg.Sensor}, nil
}
