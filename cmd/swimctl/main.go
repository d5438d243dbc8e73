package main

import (
	"github.com/joho/godotenv"

	"github.com/tehsphinx/pubsubfacade/cmd/swimctl/cmd"
)

func main() {
	_ = godotenv.Load(".env")

	cmd.Execute()
}
