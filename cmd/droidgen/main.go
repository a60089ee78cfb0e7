package main

import (
	"github.com/droidgen/droidgen/cli"
	"github.com/droidgen/droidgen/logger"
)

func main() {
	logger.InitLogger()
	cli.Execute()
}
