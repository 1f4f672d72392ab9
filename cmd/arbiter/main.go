package main

import (
	"os"

	"github.com/scorearb/arbiter/internal/supervisor"
)

func main() {
	os.Exit(supervisor.Run())
}
