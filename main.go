// Package main is the entry point of the foilact CLI.
package main

import (
	"github.com/huangsam/foilact/cmd"
	"github.com/huangsam/foilact/internal/contract"
)

func main() {
	err := cmd.Execute()
	cmd.Shutdown()
	if err != nil {
		contract.LogFatal("foilact failed", err)
	}
}
