package main

import (
	"os"

	"github.com/noah-isme/learner-grades-api/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
