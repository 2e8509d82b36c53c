package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/geodle/geodle/internal/catalog"
)

// VariantsCmd lists the playable variants.
type VariantsCmd struct{}

func (c *VariantsCmd) Run() error {
	cat, err := catalog.Load()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "VARIANT\tENTITIES")
	for _, v := range catalog.Variants() {
		fmt.Fprintf(w, "%s\t%d\n", v, cat.Count(v))
	}
	return w.Flush()
}
