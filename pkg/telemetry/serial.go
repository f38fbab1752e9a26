package telemetry

import (
	"time"

	"github.com/pkg/errors"
	"go.bug.st/serial"
)

// DefaultReadTimeout is how long a single read on the port blocks before
// returning no data.
const DefaultReadTimeout = 100 * time.Millisecond

// Open opens a serial port for reading frames.  Reads time out after
// readTimeout so that the frame deadline in Reader is honoured.
func Open(portName string, baudRate int, readTimeout time.Duration) (serial.Port, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
	}
	s, err := serial.Open(portName, mode)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open serial port %s", portName)
	}
	if readTimeout <= 0 {
		readTimeout = DefaultReadTimeout
	}
	if err := s.SetReadTimeout(readTimeout); err != nil {
		_ = s.Close()
		return nil, errors.Wrap(err, "failed to set read timeout")
	}
	return s, nil
}
