package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/runletapp/crabnode/node"
)

var swarmKeyOut string

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the node version",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), node.Version)
		return nil
	},
}

var swarmKeyCmd = &cobra.Command{
	Use:   "swarm-key",
	Short: "Generate a pre-shared key for a private network",
	RunE:  runSwarmKey,
}

func init() {
	swarmKeyCmd.Flags().StringVarP(&swarmKeyOut, "out", "o", "", "Write the key to this file instead of stdout")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(swarmKeyCmd)
}

func runSwarmKey(cmd *cobra.Command, args []string) error {
	key, err := node.GenerateSwarmKey()
	if err != nil {
		return err
	}

	if swarmKeyOut == "" {
		_, err := io.Copy(cmd.OutOrStdout(), key)
		fmt.Fprintln(cmd.OutOrStdout())
		return err
	}

	file, err := os.OpenFile(swarmKeyOut, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = io.Copy(file, key)
	return err
}
