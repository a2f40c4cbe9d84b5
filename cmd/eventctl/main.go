package main

import (
	"os"

	"eventgate/internal/eventctl"
)

func main() { os.Exit(eventctl.Main()) }
