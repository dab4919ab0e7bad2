package main

import (
	"os"

	"github.com/kjstillabower/weather-cli/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
