package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	apiFlag      string
	passcodeFlag string
	rootCmd      = &cobra.Command{
		Use:   "memvaultctl",
		Short: "CLI client for the MemVault gallery REST API",
	}
)

func main() {
	rootCmd.PersistentFlags().StringVarP(&apiFlag, "api", "a", "http://localhost:8080", "Gallery service base URL")
	rootCmd.PersistentFlags().StringVarP(&passcodeFlag, "passcode", "p", "", "Passcode for privileged operations")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
