package main

import (
	"os"

	bindercmder "github.com/inkwellhq/binder/cmd/binder"
)

func main() {
	cmd := bindercmder.NewBinderCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
