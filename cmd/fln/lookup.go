package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"
)

func runLookup() {
	fs := flag.NewFlagSet("lookup", flag.ExitOnError)
	limit := fs.Int("limit", 10, "Maximum rows to return")
	exact := fs.Bool("exact", false, "Equality match instead of containment")
	domain := fs.String("domain", "", "Restrict to records whose body contains this fragment")
	fs.Parse(os.Args[1:])

	args := fs.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: fln lookup [--limit N] [--exact] [--domain F] <relation> [query]")
		os.Exit(1)
	}
	relation := args[0]
	queryText := ""
	if len(args) > 1 {
		queryText = args[1]
	}

	st := openDB()
	defer st.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	refs, err := st.NameSearch(ctx, relation, queryText, *exact, *domain, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lookup failed: %v\n", err)
		os.Exit(1)
	}

	if len(refs) == 0 {
		fmt.Println("(no results)")
		return
	}
	for _, ref := range refs {
		fmt.Printf("%-8s %s\n", ref.ID, ref.Label)
	}
}
