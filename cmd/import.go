package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/ledger"
	"github.com/etnz/ledger/history"
	"github.com/etnz/ledger/ledgerxml"
	"github.com/etnz/ledger/ofx"
	"github.com/google/subcommands"
	"go.uber.org/zap"
)

type importCmd struct {
	output string
	totals bool
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import statement files into a journal" }
func (*importCmd) Usage() string {
	return `import [-o out.xml] [-totals] FILE...

  Imports OFX and ledger XML files into a single journal and prints a summary.
  Each import is recorded in the import history. OFX statement lines already
  imported are skipped when de-duplication is enabled. Lines only count as
  imported once the journal is written with -o.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "Write the journal as ledger XML to this file")
	f.BoolVar(&c.totals, "totals", false, "Write running totals in the XML output")
}

func (c *importCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one file is required.")
		return subcommands.ExitUsageError
	}
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	log, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		return subcommands.ExitFailure
	}
	defer log.Sync()

	store, err := openHistory(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening import history: %v\n", err)
		return subcommands.ExitFailure
	}
	var (
		pending *pendingIndex
		index   ofx.Index
	)
	if store != nil {
		defer store.Close()
		if cfg.OFX.Dedupe {
			pending = newPendingIndex(store)
			index = pending
		}
	}

	j := ledger.NewJournal()
	results, err := importFiles(j, f.Args(), parsers(log, index), store, log)

	out, rerr := glamour.Render(summaryMarkdown(j, results), "auto")
	if rerr != nil {
		log.Warn("cannot render summary", zap.Error(rerr))
		out = summaryMarkdown(j, results)
	}
	fmt.Print(out)

	if c.output != "" {
		if werr := writeJournal(c.output, j, c.totals || cfg.Export.ShowTotals, cfg.Export.LegacyEntities); werr != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", c.output, werr)
			return subcommands.ExitFailure
		}
		fmt.Printf("Journal written to %s\n", c.output)
		if pending != nil {
			if cerr := pending.Commit(); cerr != nil {
				log.Warn("cannot record imported statement lines", zap.Error(cerr))
			}
		}
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// result is the outcome of the import of one file.
type result struct {
	File   string
	Format string
	Stats  ledger.ImportStats
	Err    error
}

// importFiles imports every file into j. A file that fails does not stop the
// others, all failures are joined in the returned error. store may be nil.
func importFiles(j *ledger.Journal, files []string, ps []ledger.Parser, store *history.Store, log *zap.Logger) ([]result, error) {
	var (
		results []result
		errs    []error
	)
	for _, name := range files {
		res := importFile(j, name, ps, store, log)
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, res.Err))
		}
		results = append(results, res)
	}
	return results, errors.Join(errs...)
}

func importFile(j *ledger.Journal, name string, ps []ledger.Parser, store *history.Store, log *zap.Logger) (res result) {
	res.File = name
	f, err := os.Open(name)
	if err != nil {
		res.Err = err
		return res
	}
	defer f.Close()

	p, err := detect(f, ps)
	if err != nil {
		res.Err = err
		return res
	}
	res.Format = p.Format()

	var sess history.Session
	if store != nil {
		if sess, err = store.Begin(name, res.Format); err != nil {
			res.Err = err
			return res
		}
	}
	res.Stats, res.Err = p.Import(f, j, nil, name)
	if store != nil {
		if err := store.Finish(sess, res.Stats); err != nil {
			log.Warn("cannot record import session", zap.String("source", name), zap.Error(err))
		}
	}
	return res
}

// writeJournal exports j as ledger XML into the named file.
func writeJournal(name string, j *ledger.Journal, totals, legacy bool) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	w := ledgerxml.NewWriter(f)
	w.ShowTotals = totals
	w.LegacyEntities = legacy
	if err := w.WriteJournal(j); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// pendingIndex holds the statement lines marked during a run until Commit.
// A run that does not write its journal leaves the index unchanged.
type pendingIndex struct {
	index ofx.Index
	marks []fitid
	seen  map[fitid]bool
}

type fitid struct{ account, id string }

func newPendingIndex(index ofx.Index) *pendingIndex {
	return &pendingIndex{index: index, seen: make(map[fitid]bool)}
}

func (p *pendingIndex) Seen(account, id string) (bool, error) {
	if p.seen[fitid{account, id}] {
		return true, nil
	}
	return p.index.Seen(account, id)
}

func (p *pendingIndex) Mark(account, id string) error {
	k := fitid{account, id}
	if !p.seen[k] {
		p.seen[k] = true
		p.marks = append(p.marks, k)
	}
	return nil
}

// Commit records the pending marks in the underlying index.
func (p *pendingIndex) Commit() error {
	var errs []error
	for _, k := range p.marks {
		if err := p.index.Mark(k.account, k.id); err != nil {
			errs = append(errs, fmt.Errorf("%s %s: %w", k.account, k.id, err))
		}
	}
	p.marks = nil
	return errors.Join(errs...)
}
