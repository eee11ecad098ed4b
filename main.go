package main

import (
	"os"

	"github.com/conan-go/conancore/cli"
	"github.com/conan-go/conancore/utils"
	clitool "github.com/urfave/cli/v2"
)

var log utils.Log

func main() {
	log = utils.NewDefaultLogger(getCliLogLevel())
	app := &clitool.App{
		Name:     "conan",
		Usage:    "manage C/C++ package recipes, dependency graphs, and binaries",
		Commands: cli.GetCommands(log),
	}
	err := app.Run(os.Args)
	if err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func getCliLogLevel() utils.LevelType {
	switch os.Getenv("CONAN_LOG_LEVEL") {
	case "ERROR":
		return utils.ERROR
	case "WARN":
		return utils.WARN
	case "DEBUG":
		return utils.DEBUG
	default:
		return utils.INFO
	}
}
