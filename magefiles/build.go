//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Tidies the module and builds the cubes binary into bin/.
func (Build) Binary() error {
	mg.Deps(tidy)
	if _, err := executeCmd("go", withArgs("build", "-o", "bin/cubes", "."), withStream()); err != nil {
		return err
	}
	return nil
}

// Vets the module and runs every test with the race detector.
func (Build) Test() error {
	if _, err := executeCmd("go", withArgs("vet", "./...")); err != nil {
		return err
	}
	if _, err := executeCmd("go", withArgs("test", "-race", "-count=1", "./..."), withStream()); err != nil {
		return err
	}
	return nil
}
