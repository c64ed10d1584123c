// Package main provides the partlabels CLI.
package main

import "github.com/mesh-intelligence/partlabels/internal/cli"

func main() {
	cli.Execute()
}
