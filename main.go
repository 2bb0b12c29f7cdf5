package main

import (
	"os"

	"github.com/diveerp/diveerp/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
