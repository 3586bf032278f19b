package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
)

type historyCmd struct {
	limit int
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "list recent imports" }
func (*historyCmd) Usage() string {
	return `history [-n N]

  Lists the most recent import sessions, with their outcome.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.limit, "n", 20, "Number of sessions to list, 0 for all")
}

func (c *historyCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	store, err := openHistory(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening import history: %v\n", err)
		return subcommands.ExitFailure
	}
	if store == nil {
		fmt.Fprintln(os.Stderr, "Error: import history is disabled (empty history path).")
		return subcommands.ExitFailure
	}
	defer store.Close()

	sessions, err := store.Sessions(c.limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	md := historyMarkdown(sessions)
	out, err := glamour.Render(md, "auto")
	if err != nil {
		out = md
	}
	fmt.Print(out)
	return subcommands.ExitSuccess
}
