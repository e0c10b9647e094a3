package main

import (
	"os"
	"runtime/debug"

	"github.com/irskep/cimonitor/internal/cli"
)

var version = "dev"

func init() {
	if version != "dev" {
		return
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		version = info.Main.Version
	}
}

func main() {
	cli.SetVersion(version)
	os.Exit(cli.Execute())
}
