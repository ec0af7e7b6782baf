package main

import "github.com/agentic-research/pathform/cmd"

func main() {
	cmd.Execute()
}
