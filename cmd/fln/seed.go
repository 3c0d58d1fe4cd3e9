package main

import (
	"flag"
	"fmt"
	"os"
)

func runSeed() {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	fs.Parse(os.Args[1:])

	st := openDB()
	defer st.Close()

	n, err := st.SeedDemo()
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
		os.Exit(1)
	}

	total, _ := st.RecordCount()
	fmt.Printf("Inserted %d new records (%d total)\n", n, total)
}
