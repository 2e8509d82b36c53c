package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/geodle/geodle/internal/catalog"
	"github.com/geodle/geodle/internal/config"
	"github.com/geodle/geodle/internal/results"
)

// ResultsCmd prints a user's recent finished rounds.
type ResultsCmd struct {
	User    string `kong:"arg,help='User ID to look up'"`
	Variant string `kong:"default='countries',enum='countries,powiaty,wojewodztwa,us_states',help='Game variant'"`
	Limit   int    `kong:"default='10',help='Maximum number of rounds to show'"`
}

func (c *ResultsCmd) Run(cli *CLI) error {
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return err
	}

	store, err := results.NewSQLite(cfg.Results.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	rows, err := store.RecentResults(context.Background(), c.User, catalog.Variant(c.Variant), c.Limit)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Printf("No results for %s in %s.\n", c.User, c.Variant)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FINISHED\tOUTCOME\tSCORE\tTURNS\tENTITY\tSESSION")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\n",
			r.FinishedAt.Local().Format(time.DateTime), r.Outcome, r.Score,
			r.TurnCount, r.EntityID, r.SessionID)
	}
	return w.Flush()
}
