package main

import (
	"os"

	"github.com/memvault/memvault/galleryservice"
)

func main() {
	if err := galleryservice.Run(); err != nil {
		os.Exit(1)
	}
}
