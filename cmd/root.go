package cmd

import (
	"os"

	"github.com/mezonai/starledger/logx"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "starledger",
	Short: "Star registry ledger node CLI",
	Long:  "Command line interface for running a star registry ledger node and producing ownership signatures.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logx.Error("CMD", "Command execution failed:", err)
		os.Exit(1)
	}
}
