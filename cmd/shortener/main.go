package main

import (
	"os"

	"github.com/fsdevblog/shortlinks/internal/bmeta"
	"github.com/fsdevblog/shortlinks/internal/cli"
)

// Задаются при сборке: -ldflags "-X main.buildVersion=v1.0.0 ...".
var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	root := cli.NewRootCommand(bmeta.Info{
		Version: buildVersion,
		Date:    buildDate,
		Commit:  buildCommit,
	})
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
