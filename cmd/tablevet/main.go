// Package main is the entry point for the tablevet CLI
package main

import (
	"github.com/tablevet/tablevet/cmd"
)

func main() {
	cmd.Execute()
}
