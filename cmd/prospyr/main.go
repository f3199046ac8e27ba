// Package main provides the prospyr CLI.
package main

import "github.com/mesh-intelligence/prospyr/internal/cli"

func main() {
	cli.Execute()
}
