package main

import "github.com/sorynlabs/soryn/internal/cli"

func main() {
	cli.Execute()
}
