//go:build mage

package main

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const binDir = "bin"

// Test runs all tests with the race detector.
func Test() error {
	return sh.RunV("go", "test", "-race", "-count=1", "./...")
}

// Vet runs go vet on all packages.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Build builds the swimctl command into ./bin.
func Build() error {
	mg.Deps(Vet)

	if r := os.Mkdir(binDir, 0755); r != nil && !errors.Is(r, os.ErrExist) {
		return r
	}
	return sh.RunV("go", "build", "-o", filepath.Join(binDir, "swimctl"), "./cmd/swimctl")
}

// Check vets and tests the module.
func Check() {
	mg.SerialDeps(Vet, Test)
}
