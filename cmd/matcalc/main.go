// matcalc - bar and plate material cost calculator
//
// Computes bars needed, stock weight, material cost and scrap recovery for
// CNC turned parts cut from round, square, hexagonal or rectangular bar
// stock, and plate cost by weight. Runs as a CLI or as an HTTP service.
//
// Build:
//   go build -o matcalc ./cmd/matcalc
//
// Cross-compile:
//   GOOS=windows GOARCH=amd64 go build -o matcalc.exe ./cmd/matcalc
//   GOOS=darwin  GOARCH=arm64 go build -o matcalc-darwin ./cmd/matcalc

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
