package main

import "roomrelay/internal/cli"

func main() {
	cli.Execute()
}
