package main

import (
	"os"

	"github.com/mattn/go-isatty"

	"github.com/idilsaglam/todo/internal/cli"
)

func main() {
	interactive := isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
	os.Exit(cli.Run(os.Args[1:], cli.Options{
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Interactive: interactive,
	}))
}
