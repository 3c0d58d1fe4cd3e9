package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/abelbrown/facetline/internal/config"
)

func runFields() {
	fs := flag.NewFlagSet("fields", flag.ExitOnError)
	fs.Parse(os.Args[1:])

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	reg, err := cfg.Registry()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid field configuration: %v\n", err)
		os.Exit(1)
	}

	for _, field := range reg.Fields() {
		line := fmt.Sprintf("%-10s %-12s %-10s op=%s", field.ID, field.Label, field.Type, field.DefaultOperator())
		if field.Relation != "" {
			line += "  relation=" + field.Relation
		}
		fmt.Println(line)
		for _, opt := range field.Options {
			fmt.Printf("           option %s (%s)\n", opt.Label, opt.Value)
		}
		for _, sub := range field.Sub {
			fmt.Printf("           sub %s (%s)\n", sub.ID, sub.Type)
		}
	}
}
