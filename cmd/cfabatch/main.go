package main

import "github.com/cfa-tools/cfabatch/internal/cli"

func main() {
	cli.Execute()
}
