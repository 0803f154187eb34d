package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "vipani",
	Short: "Vipani — product catalog service CLI",
	Long:  "Vipani is a product catalog microservice. Use this CLI to run the server and manage its backing stores.",
}

func init() {
	// Server
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)

	// Backing stores
	rootCmd.AddCommand(indexEnsureCmd)
	rootCmd.AddCommand(seedCmd)
}
