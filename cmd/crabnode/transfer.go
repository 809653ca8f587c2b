package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runletapp/crabnode"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Store a file and print its content id",
	Args:  cobra.ExactArgs(1),
	RunE:  runUpload,
}

var downloadCmd = &cobra.Command{
	Use:   "download <cid> <file>",
	Short: "Retrieve content into a file",
	Args:  cobra.ExactArgs(2),
	RunE:  runDownload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(downloadCmd)
}

func printProgress(cmd *cobra.Command) crabnode.ProgressObserver {
	return func(progress crabnode.OperationProgress) {
		if progress.Stage == crabnode.StageFailed {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", progress.Stage, progress.Reason)
			return
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%-12s %5.1f%% %d bytes\n", progress.Stage, progress.Progress*100, progress.BytesProcessed)
	}
}

func runUpload(cmd *cobra.Command, args []string) error {
	manager, err := newManager(cmd, printProgress(cmd))
	if err != nil {
		return err
	}
	defer manager.Close()

	if err := manager.Connect(cmd.Context()); err != nil {
		return err
	}

	cid, err := manager.Upload(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), cid)
	return nil
}

func runDownload(cmd *cobra.Command, args []string) error {
	manager, err := newManager(cmd, printProgress(cmd))
	if err != nil {
		return err
	}
	defer manager.Close()

	if err := manager.Connect(cmd.Context()); err != nil {
		return err
	}

	if err := manager.Download(cmd.Context(), args[0], args[1]); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), args[1])
	return nil
}
