package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/featherforge/arclink/link"
	"github.com/featherforge/arclink/protocol"
	"github.com/featherforge/arclink/transfer"
)

var sendCmd = &cobra.Command{
	Use:   "send <file>",
	Short: "Transfer a file to the peer node",
	Long: `Sends one file over the link using the fragmented, acknowledged
transfer protocol and reports progress until the peer has confirmed
every fragment.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		port, err := openPort()
		if err != nil {
			return err
		}
		defer port.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		// No periodic frame: this side only paces the transfer.
		ep := link.New(port, protocol.MsgStatus, nil,
			link.WithDrainBudget(cfg.DrainBudget),
			link.WithLogger(slogLogger{log}),
		)

		done := make(chan error, 1)
		mgr := transfer.NewManager(ep,
			transfer.WithFragmentSize(cfg.FragmentSize),
			transfer.WithObserver(&sendObserver{done: done}),
			transfer.WithLogger(slogLogger{log}),
		)
		transfer.Attach(ep, mgr, nil, time.Now)

		if err := mgr.Start(filepath.Base(args[0]), data); err != nil {
			return err
		}
		log.Info("sending", "file", args[0], "bytes", len(data))

		ticker := time.NewTicker(5 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				mgr.Cancel()
				return ctx.Err()
			case err := <-done:
				if err != nil {
					return err
				}
				stats := mgr.Stats()
				fmt.Fprintf(cmd.OutOrStdout(), "sent %d bytes in %d fragments (%d retries)\n",
					len(data), stats.FragmentsSent, stats.Retries)
				return nil
			case now := <-ticker.C:
				ep.Tick(now)
				mgr.Update(now, true)
			}
		}
	},
}

// sendObserver prints a progress bar and signals completion.
type sendObserver struct {
	done chan error
}

func (o *sendObserver) OnProgress(p transfer.Progress) {
	fmt.Printf("\r%s: %3.0f%%", p.Name, p.Fraction*100)
	if p.Fraction >= 1.0 {
		fmt.Println()
	}
}

func (o *sendObserver) OnComplete(r transfer.Result) {
	o.done <- r.Err
}

func init() {
	rootCmd.AddCommand(sendCmd)
}
