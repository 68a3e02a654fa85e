//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Meshes the playground scene once.
func (Run) Playground() error {
	fmt.Println("Run playground...")
	if _, err := executeCmd("go", withArgs("run", ".", "-config", "cubes.toml"), withStream()); err != nil {
		return err
	}
	return nil
}

// Meshes the playground scene and rebuilds it on every save.
func (Run) Watch() error {
	fmt.Println("Watching playground...")
	if _, err := executeCmd("go", withArgs("run", ".", "-config", "cubes.watch.toml"), withStream()); err != nil {
		return err
	}
	return nil
}
