//go:build mage

package main

import (
	"fmt"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Fetch builds the CLI and downloads WoS records using wos-filter.yaml.
// Set WOS_FILTER_FETCH_QUERY to override the configured query.
func Fetch() error {
	mg.Deps(Build)
	fmt.Println("[fetch] Downloading records from the WoS Expanded API.")
	return sh.RunV(filepath.Join(binDir, binName), "fetch")
}

// Filter builds the CLI and classifies the fetched summary table.
func Filter() error {
	mg.Deps(Build)
	fmt.Println("[filter] Classifying records with", rulesFile)
	return sh.RunV(filepath.Join(binDir, binName), "filter",
		"--input", filepath.Join("WOS_fetched_results", "wos_results.csv"),
		"--rules", rulesFile,
		"--output", filepath.Join("output", "filtered_results.csv"),
		"--pi-output", filepath.Join("output", "pi_names_checked.csv"),
	)
}

// Rules validates the rule file.
func Rules() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "rules", "check", rulesFile)
}
