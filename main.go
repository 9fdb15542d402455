package main

import (
	"context"
	"os"

	"github.com/klppl/digg-invite-brutforce/backend/cli"
)

func main() {
	os.Exit(cli.Execute(context.Background()))
}
