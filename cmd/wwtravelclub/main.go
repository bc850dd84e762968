package main

import "github.com/neexbeast/wwtravelclub/internal/cli"

func main() {
	cli.Execute()
}
