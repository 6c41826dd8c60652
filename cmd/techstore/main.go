package main

import (
	"os"

	"github.com/niksmo/techstore/config"
	"github.com/niksmo/techstore/internal/app"
	"github.com/niksmo/techstore/pkg/sigctx"
)

func main() {
	os.Exit(run())
}

func run() int {
	sigCtx, stop := sigctx.NotifyContext()
	defer stop()

	cfg, args := config.Load(os.Args[1:])

	techstore := app.New(sigCtx, cfg)
	defer techstore.Close()

	return techstore.Run(args)
}
