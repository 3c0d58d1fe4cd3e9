package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
)

func runStats() {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	recent := fs.Int("recent", 10, "Number of recent searches to show")
	fs.Parse(os.Args[1:])

	st := openDB()
	defer st.Close()

	total, _ := st.RecordCount()
	fmt.Printf("Total records:  %d\n", total)

	relations, _ := st.Relations()
	names := make([]string, 0, len(relations))
	for name := range relations {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %-12s %d\n", name, relations[name])
	}

	searches, err := st.RecentSearches(*recent)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read recent searches: %v\n", err)
		return
	}
	if len(searches) == 0 {
		return
	}

	fmt.Printf("\nRecent searches:\n")
	for _, ss := range searches {
		line := fmt.Sprintf("  %s  %q", ss.Created.Format("2006-01-02 15:04"), ss.Query)
		if len(ss.Facets) > 0 {
			line += fmt.Sprintf("  (%d facets)", len(ss.Facets))
		}
		fmt.Println(line)
	}
}
