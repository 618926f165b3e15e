package main

import (
	"log"
	"os"

	"SystemMonitor/pkg/commands"
)

func main() {
	log.SetFlags(log.LstdFlags)
	os.Exit(commands.Execute())
}
