package main

import (
	"context"
	"os"

	"stockwise/internal/cli"

	"github.com/rs/zerolog/log"
)

// @title       Stockwise API
// @version     1.0
// @description Inventory, stock ledger and sales for a small shop.
// @BasePath    /
func main() {
	if err := cli.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		log.Error().Err(err).Msg("stockwise failed")
		os.Exit(1)
	}
}
