package main

import (
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/featherforge/arclink/link"
	"github.com/featherforge/arclink/protocol"
	"github.com/featherforge/arclink/transfer"
)

var rendererCmd = &cobra.Command{
	Use:   "renderer",
	Short: "Run the renderer side of the link",
	Long: `Runs Node B: receives the telemetry stream, derives a display frame
from it, and streams that frame back at the configured frame rate.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, err := openPort()
		if err != nil {
			return err
		}
		defer port.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		// Latest telemetry, written only from the link goroutine.
		var latest atomic.Pointer[protocol.TelemetryPayload]
		latest.Store(&protocol.TelemetryPayload{})

		ep := link.NewRenderer(port,
			func() []byte { return renderFrame(latest.Load()) },
			func(t *protocol.TelemetryPayload) { latest.Store(t) },
			link.WithFrameRate(cfg.FrameRate),
			link.WithDrainBudget(cfg.DrainBudget),
			link.WithLogger(slogLogger{log}),
		)

		obs := &logObserver{log: log}
		recv := transfer.NewReceiver(ep,
			transfer.WithObserver(obs),
			transfer.WithLogger(slogLogger{log}),
		)
		transfer.Attach(ep, nil, recv, time.Now)

		log.Info("renderer running", "port", cfg.Port, "baud", cfg.Baud,
			"fps", cfg.FrameRate)

		return runLink(ctx, ep, func(now time.Time) {
			recv.CheckTimeout(now)
		})
	},
}

// renderFrame derives a small LED state payload from telemetry: one RGB
// triple per telemetry domain, scaled by its current value. Real pixel
// shading lives on the display hardware; the link only needs bytes.
func renderFrame(t *protocol.TelemetryPayload) []byte {
	frame := make([]byte, 12)

	frame[0] = scale(t.AccelX, 1)
	frame[1] = scale(t.AccelY, 1)
	frame[2] = scale(t.AccelZ, 1)

	frame[3] = scale(t.Temperature-15, 20)
	frame[4] = scale(t.Humidity, 100)
	frame[5] = 0

	frame[6] = scale(t.MicDbLevel+60, 60)
	frame[7] = 0
	frame[8] = t.ButtonFlags

	frame[9] = t.GpsSatellites
	frame[10] = t.ValidFlags
	frame[11] = 0

	return frame
}

func scale(v, max float32) byte {
	if max <= 0 {
		return 0
	}
	n := v / max
	if n < 0 {
		n = -n
	}
	if n > 1 {
		n = 1
	}
	return byte(n * 255)
}

func init() {
	rootCmd.AddCommand(rendererCmd)
}
