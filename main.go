// The main package for the meteodb executable.
package main

import (
	"github.com/tlevesque/meteodb/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
