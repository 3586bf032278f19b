package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"go.uber.org/zap"
)

type detectCmd struct{}

func (*detectCmd) Name() string     { return "detect" }
func (*detectCmd) Synopsis() string { return "print the format of statement files" }
func (*detectCmd) Usage() string {
	return `detect FILE...

  Prints the detected format of each file: "ofx", "xml" or "unknown".
`
}

func (*detectCmd) SetFlags(*flag.FlagSet) {}

func (c *detectCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one file is required.")
		return subcommands.ExitUsageError
	}
	ps := parsers(zap.NewNop(), nil)

	status := subcommands.ExitSuccess
	for _, name := range f.Args() {
		format, err := detectFile(name, ps)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", name, err)
			status = subcommands.ExitFailure
			continue
		}
		fmt.Printf("%s\t%s\n", name, format)
	}
	return status
}
