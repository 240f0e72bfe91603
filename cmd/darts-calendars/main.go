package main

import (
	"github.com/pfrederiksen/darts-calendars/internal/cli"
)

func main() {
	cli.Execute()
}
