package main

import "codeberg.org/mutker/ampurr/internal/cli"

var version = "dev"

func main() {
	cli.Execute(version)
}
