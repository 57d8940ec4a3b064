package main

import (
	"fmt"
	"os"

	"slack-review-relay/cmd/reviewctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
