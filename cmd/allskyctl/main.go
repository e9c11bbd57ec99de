// Command allskyctl selects and archives sky camera images from the command line
package main

import (
	"context"
	"os"
	"os/signal"
	_ "time/tzdata"

	"allsky/internal/cli"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cli.Execute(ctx)
}
