package main

import (
	"os"

	"github.com/loxwell/loxwell/cmd"
)

func main() {
	app := cmd.NewLoxApp()
	os.Exit(app.Main(os.Args[1:]))
}
