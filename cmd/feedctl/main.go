package main

import (
	"os"

	"github.com/api3dao/airnode-protocol-v1-sub003/cmd/feedctl/cmd"
)

func main() {
	rootCmd := cmd.NewRootCmd()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
