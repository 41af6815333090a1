package main

import "github.com/bitfsorg/fileledger-go/internal/cli"

func main() {
	cli.Execute()
}
