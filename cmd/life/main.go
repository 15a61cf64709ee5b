package main

import "mutant-life/internal/cli"

func main() {
	cli.Execute()
}
