// Standalone runner for the integration database container. Starts a
// seeded MariaDB and keeps it up until interrupted, for developing
// against a real database without docker-compose.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/nutricart/nutricart-api/tests/helpers"
)

func main() {
	var envFilename string
	var showHelp bool
	flag.StringVar(&envFilename, "f", "", "path to the .env file")
	flag.BoolVar(&showHelp, "h", false, "show usage")
	flag.Parse()

	usage := `
Run a seeded MariaDB testcontainer with the environment variables from the .env file.

Usage:

testdb [-h] [-f ENV_FILE_PATH]

ENV_FILE_PATH: path to the .env file

example
  testdb -f /path/to/something/.env
`
	if showHelp {
		fmt.Println(usage)
		return
	}

	if envFilename != "" {
		log.Printf("Loading environment variables from %s\n", envFilename)
		if err := godotenv.Load(envFilename); err != nil {
			log.Fatalf("Failed to load environment variables: %v\n", err)
		}
	} else {
		log.Printf("No environment file specified, using current environment variables\n")
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGTSTP, syscall.SIGQUIT)

	var tc *helpers.TestContainers
	go func() {
		var err error
		tc, err = helpers.CreateDBContainer(nil)
		if err != nil {
			log.Fatalf("Failed to create test containers: %v\n", err)
		}
	}()

	sig := <-sigs
	log.Printf("\nReceived signal: %v, terminating test containers...\n", sig)
	if tc != nil {
		tc.Terminate(nil)
	}
}
