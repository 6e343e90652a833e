package main

import (
	"fmt"
	"os"

	"github.com/supportbot/consultbot-go/internal/cli"
)

func main() {
	if err := cli.NewRoot().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "consult-bot:", err)
		os.Exit(1)
	}
}
