package main

import "github.com/greenloop-network/greenloop/internal/cli"

func main() {
	cli.Execute()
}
