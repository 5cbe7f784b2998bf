//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

func alexmatch(args ...string) error {
	return sh.RunV(filepath.Join(binDir, binName), args...)
}

// Resolve builds the CLI and runs the name search pass on investigators
// without an Alex_id.
func Resolve() error {
	mg.Deps(Build)
	return alexmatch("resolve", "--only-missing")
}

// Ratify builds the CLI and runs the DOI ratify pass.
func Ratify() error {
	mg.Deps(Build)
	return alexmatch("ratify")
}

// Compile builds the CLI and writes the latest run summary to output/.
func Compile() error {
	mg.Deps(Build)
	return alexmatch("compile", "--out", filepath.Join("output", "compiled.yaml"))
}
