// Package all registers all shell commands.
package all

import (
	// commands
	_ "github.com/robotalks/rover.go/pkg/cli/cmds/nav"
)
