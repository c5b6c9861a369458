// Package main is the entry point for the vbuild CLI.
package main

import "vbuild.dev/pkg/vbuild/cmd"

func main() {
	cmd.Execute()
}
