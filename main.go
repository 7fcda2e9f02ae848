package main

import (
	"log"

	"github.com/corvell/imagetier/cmd"
	"github.com/corvell/imagetier/config"
)

func main() {
	log.Printf("imagetier %s (%s)", config.Version, config.CommitHash)
	cmd.Execute()
}
