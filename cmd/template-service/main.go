package main

import (
	"os"

	"github.com/MattyO101/Legalassist-MPV/internal/bootstrap"
)

func main() {
	os.Exit(bootstrap.Main("template-service", "9002", bootstrap.BuildTemplates))
}
