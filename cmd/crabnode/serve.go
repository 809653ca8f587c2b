package main

import (
	"os"
	"os/signal"
	"syscall"

	logging "github.com/ipfs/go-log/v2"
	"github.com/spf13/cobra"

	"github.com/runletapp/crabnode/commands"
	"github.com/runletapp/crabnode/options"
)

var log = logging.Logger("crabnode/cli")

var serveAutoConnect bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the command protocol on stdin/stdout",
	Long: `Read one command per line from stdin and answer each with a JSON line on
stdout. Progress of running transfers is written as JSON event lines.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveAutoConnect, "auto-connect", false, "Connect as soon as the server starts")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	writer := commands.WriterNew(os.Stdout)

	extra := []options.Option{}
	if cmd.Flags().Changed("auto-connect") {
		extra = append(extra, options.AutoConnect(serveAutoConnect))
	}

	manager, err := newManager(cmd, writer.Progress, extra...)
	if err != nil {
		return err
	}
	defer manager.Close()

	dispatcher := commands.DispatcherNew(manager)

	done := make(chan error, 1)
	go func() {
		done <- commands.Serve(ctx, os.Stdin, writer, dispatcher)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		log.Infow("shutting down")
		return nil
	}
}
