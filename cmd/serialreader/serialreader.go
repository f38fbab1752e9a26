package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/alecthomas/kong"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tigerbot-team/linefollower/pkg/config"
	"github.com/tigerbot-team/linefollower/pkg/linesensor"
	"github.com/tigerbot-team/linefollower/pkg/telemetry"
)

var CLI struct {
	Config  string        `help:"Config file." default:"linefollower.yaml" type:"path"`
	Port    string        `help:"Serial port, overrides the config file."`
	Baud    int           `help:"Baud rate, overrides the config file."`
	Timeout time.Duration `help:"Per-frame timeout, overrides the config file."`
	Count   int           `help:"Stop after this many frames; 0 reads forever."`
	Replay  string        `help:"Read a captured byte stream from this file instead of the port." type:"path"`
	Debug   bool          `help:"Debug logging."`
}

func main() {
	kong.Parse(&CLI,
		kong.Name("serialreader"),
		kong.Description("Print sensor frames sent by the car."),
		kong.UsageOnError(),
	)

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if CLI.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if CLI.Port != "" {
		cfg.Telemetry.Port = CLI.Port
	}
	if CLI.Baud != 0 {
		cfg.Telemetry.Baud = CLI.Baud
	}
	if CLI.Timeout != 0 {
		cfg.Telemetry.TimeoutSeconds = CLI.Timeout.Seconds()
	}

	src, err := openSource(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open telemetry source")
	}
	defer src.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	n, err := readFrames(ctx, telemetry.NewReader(src, cfg.TelemetryConfig()), CLI.Count)
	log.Info().Int("frames", n).Msg("Done")
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("Telemetry failed")
	}
}

func openSource(cfg config.Config) (io.ReadCloser, error) {
	if CLI.Replay != "" {
		f, err := os.Open(CLI.Replay)
		if err != nil {
			return nil, errors.Wrap(err, "failed to open replay file")
		}
		return f, nil
	}
	log.Info().Str("port", cfg.Telemetry.Port).Int("baud", cfg.Telemetry.Baud).Msg("Opening serial port")
	return telemetry.Open(cfg.Telemetry.Port, cfg.Telemetry.Baud, telemetry.DefaultReadTimeout)
}

// readFrames logs frames until count is reached, the context ends or the
// stream does.  Bad frames are logged and skipped.
func readFrames(ctx context.Context, r *telemetry.Reader, count int) (int, error) {
	n := 0
	for count <= 0 || n < count {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		f, err := r.ReadFrame(ctx)
		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			return n, nil
		case errors.Is(err, telemetry.ErrFramingTimeout):
			if ctx.Err() != nil {
				return n, ctx.Err()
			}
			log.Warn().Err(err).Msg("No frame")
			continue
		case errors.Is(err, telemetry.ErrMalformedFrame),
			errors.Is(err, telemetry.ErrDecode),
			errors.Is(err, telemetry.ErrMalformedPayload):
			log.Warn().Err(err).Msg("Dropped frame")
			continue
		default:
			return n, err
		}

		n++
		ev := log.Info().Floats64("sensor", f.Sensor).Bool("crossbar", linesensor.IsCrossbar(f.Sensor))
		if pos, ok := linesensor.Position(f.Sensor); ok {
			ev = ev.Float64("position", pos).Float64("centre", linesensor.Centre(len(f.Sensor)))
		}
		ev.Msg("Frame")
	}
	return n, nil
}
