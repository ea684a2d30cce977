package main

import (
	"os"

	"github.com/tartampluch/go-lunar-birthday/internal/cli"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// main delegates to cli.Execute so deferred cleanup runs before os.Exit.
func main() {
	cli.SetVersionInfo(version, commit, date)
	os.Exit(cli.Execute())
}
