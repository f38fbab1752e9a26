package telemetry

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

// EncodeFrame builds a frame the way the car's firmware does: the JSON payload
// padded with startLen start markers and endLen end markers.
func EncodeFrame(sensor []float64, startLen, endLen int) ([]byte, error) {
	if startLen < 1 || endLen < 1 {
		return nil, errors.Errorf("need at least one start and end marker, got %d and %d", startLen, endLen)
	}
	if sensor == nil {
		sensor = []float64{}
	}
	payload, err := json.Marshal(struct {
		Sensor []float64 `json:"sensor"`
	}{sensor})
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode sensor values")
	}

	var buf bytes.Buffer
	buf.Write(bytes.Repeat([]byte{StartMarker}, startLen))
	buf.Write(payload)
	buf.Write(bytes.Repeat([]byte{EndMarker}, endLen))
	return buf.Bytes(), nil
}
