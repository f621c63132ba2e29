package main

import (
	"os"

	"github.com/MattyO101/Legalassist-MPV/internal/bootstrap"
)

func main() {
	os.Exit(bootstrap.Main("document-service", "9001", bootstrap.BuildDocuments))
}
