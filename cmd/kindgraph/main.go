package main

import "github.com/reoring/kindgraph/cmd/kindgraph/internal/command"

func main() {
	command.Execute()
}
