package main

import (
	"os"

	"github.com/MattyO101/Legalassist-MPV/internal/bootstrap"
)

func main() {
	os.Exit(bootstrap.Main("auth-service", "9000", bootstrap.BuildAuth))
}
