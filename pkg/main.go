package main

import (
	"flag"
	"log"

	"github.com/joho/godotenv"
)

func main() {
	// Missing .env is fine, deployment can use real env vars.
	_ = godotenv.Load()
	flag.Parse()

	server, err := Setup()
	if err != nil {
		log.Fatalf("main start failed %v", err)
		return
	}

	server.Run()
}
