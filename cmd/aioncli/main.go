// Package main is the entrypoint for aioncli.
// aioncli turns a plain English question into structured option parameters.
package main

import (
	"github.com/tutu-network/aioncli/internal/cli"
	"github.com/tutu-network/aioncli/internal/domain"
)

// version may be overridden at build time via -ldflags.
var version = domain.Version

func main() {
	cli.Execute(version)
}
