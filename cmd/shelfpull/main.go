package main

import (
	"os"

	"shelfpull/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
