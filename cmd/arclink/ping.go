package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/featherforge/arclink/render"
)

var pingCount int

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Ping the renderer over the render command channel",
	RunE: func(cmd *cobra.Command, args []string) error {
		port, err := openPort()
		if err != nil {
			return err
		}
		defer port.Close()

		ch := render.NewChannel(port,
			render.WithResponseTimeout(cfg.ResponseTimeout),
			render.WithLogger(slogLogger{log}),
		)

		for i := 0; i < pingCount; i++ {
			start := time.Now()
			if err := ch.Ping(cmd.Context()); err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "ping %d: %v\n", i+1, err)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ping %d: %v\n", i+1, time.Since(start).Round(time.Microsecond))
		}

		caps, err := ch.QueryCaps(cmd.Context())
		if err != nil {
			return fmt.Errorf("capability query: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "renderer v%d: %dx%d, %d sprite slots, features 0x%04X\n",
			caps.Version, caps.DisplayWidth, caps.DisplayHeight, caps.SpriteSlots, caps.Features)
		return nil
	},
}

func init() {
	pingCmd.Flags().IntVarP(&pingCount, "count", "c", 3, "number of pings")
	rootCmd.AddCommand(pingCmd)
}
