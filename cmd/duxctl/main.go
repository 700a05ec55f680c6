// Package main provides the duxctl CLI.
package main

import "github.com/mesh-intelligence/dux/internal/cli"

func main() {
	cli.Execute()
}
