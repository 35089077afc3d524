// Package scenaria is the entry point of a scenario suite binary.
//
// A suite binary registers its shared steps and Go declared scenarios in
// a DefineFunc and hands it to Main:
//
//	func main() {
//		scenaria.Main(func(s *scenario.Suite) error {
//			role.Install(s, role.Config{Default: "user"})
//			return s.SharedStep("login", login)
//		})
//	}
//
// YAML scenario files from the scenarios directory are declared after
// the DefineFunc has run, so they can reference its shared steps.
package scenaria

import (
	"io"
	"os"

	"github.com/roach88/scenaria/internal/cli"
)

// DefineFunc registers the shared steps and scenarios of a suite.
type DefineFunc = cli.DefineFunc

// Execute runs the command line in args and returns the exit code:
// 0 when every scenario passed, 1 on failures or interrupt, 2 on command
// errors.
func Execute(args []string, stdout, stderr io.Writer, define DefineFunc) int {
	return cli.Execute(args, stdout, stderr, define)
}

// Main runs the process command line and exits.
func Main(define DefineFunc) {
	os.Exit(Execute(os.Args[1:], os.Stdout, os.Stderr, define))
}
