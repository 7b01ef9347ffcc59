package main

import (
	"context"
	"math"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/featherforge/arclink/link"
	"github.com/featherforge/arclink/telemetry"
	"github.com/featherforge/arclink/transfer"
)

var coordinatorCmd = &cobra.Command{
	Use:   "coordinator",
	Short: "Run the sensor/coordinator side of the link",
	Long: `Runs Node A: samples sensors (synthetic values when no hardware is
attached), streams telemetry at the configured frame rate, latches
inbound render frames, and accepts file transfers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, err := openPort()
		if err != nil {
			return err
		}
		defer port.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		sensorBuf := telemetry.NewDoubleBuffer()
		var frameBuf telemetry.FrameBuffer

		ep := link.NewCoordinator(port, sensorBuf, &frameBuf,
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

		go sampleSensors(ctx, sensorBuf)

		log.Info("coordinator running", "port", cfg.Port, "baud", cfg.Baud,
			"fps", cfg.FrameRate)

		return runLink(ctx, ep, func(now time.Time) {
			recv.CheckTimeout(now)
		})
	},
}

// sampleSensors is the producer task. Without real hardware it publishes
// smooth synthetic values, which is enough to exercise the link and give
// the renderer something to animate.
func sampleSensors(ctx context.Context, buf *telemetry.DoubleBuffer) {
	ticker := time.NewTicker(time.Second / 60)
	defer ticker.Stop()

	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			t := now.Sub(start).Seconds()

			var s telemetry.Snapshot
			s.AccelX = float32(math.Sin(t * 2))
			s.AccelY = float32(math.Cos(t * 2))
			s.AccelZ = 1.0
			s.GyroZ = float32(30 * math.Sin(t/3))
			s.Temperature = 22.0 + float32(2*math.Sin(t/30))
			s.Humidity = 45.0
			s.Pressure = 101325
			s.MicDbLevel = -40 + float32(10*math.Sin(t*5))
			s.NetworkID = cfg.NetworkID
			s.Taken = now
			s.SetImuValid(true)
			s.SetEnvValid(true)
			s.SetMicValid(true)

			buf.Publish(s)
		}
	}
}

// runLink drives an endpoint tick loop, calling extra once per tick.
func runLink(ctx context.Context, ep *link.Endpoint, extra func(time.Time)) error {
	interval := time.Second / time.Duration(cfg.FrameRate*4)
	if interval <= 0 {
		interval = time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			stats := ep.Stats()
			log.Info("link stopped",
				"sent", stats.FramesSent, "received", stats.FramesReceived,
				"dropped", stats.PacketsDropped, "checksum_errors", stats.ChecksumErrors)
			return nil
		case now := <-ticker.C:
			ep.Tick(now)
			if extra != nil {
				extra(now)
			}
		}
	}
}

// logObserver reports transfer lifecycle through the CLI logger.
type logObserver struct {
	log interface {
		Info(msg string, args ...any)
		Error(msg string, args ...any)
	}
}

func (o *logObserver) OnProgress(p transfer.Progress) {
	o.log.Info("transfer progress", "file", p.Name, "done", p.BytesDone,
		"total", p.TotalBytes, "fraction", p.Fraction)
}

func (o *logObserver) OnComplete(r transfer.Result) {
	if r.Err != nil {
		o.log.Error("transfer failed", "file", r.Name, "err", r.Err)
		return
	}
	o.log.Info("transfer complete", "file", r.Name, "bytes", len(r.Data))
}

func init() {
	rootCmd.AddCommand(coordinatorCmd)
}
