package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/tarm/serial"

	"github.com/featherforge/arclink/config"
)

var (
	// Global flags
	cfgFile  string
	portFlag string
	baudFlag int
	verbose  bool

	// Shared state set during PersistentPreRun
	cfg *config.Config
	log *slog.Logger
)

// rootCmd is the base command for arclink.
var rootCmd = &cobra.Command{
	Use:   "arclink",
	Short: "Bidirectional serial link between a sensor coordinator and a display renderer",
	Long: `Arclink drives one side of a two-node serial link: a coordinator that
streams telemetry at a fixed 60 Hz cadence, or a renderer that streams
display output back. File transfer and render commands share the same
wire, paced behind the periodic traffic.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			path = config.DefaultPath()
		}
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if portFlag != "" {
			cfg.Port = portFlag
		}
		if baudFlag != 0 {
			cfg.Baud = baudFlag
		}

		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// openPort opens the configured serial device with a bounded read
// timeout, so link reads never block past one drain attempt.
func openPort() (*serial.Port, error) {
	timeout := cfg.ReadTimeout
	if timeout <= 0 {
		timeout = 20 * time.Millisecond
	}
	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Port,
		Baud:        cfg.Baud,
		ReadTimeout: timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Port, err)
	}
	return port, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.arclink/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&portFlag, "port", "p", "", "serial device (overrides config)")
	rootCmd.PersistentFlags().IntVarP(&baudFlag, "baud", "b", 0, "baud rate (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}
