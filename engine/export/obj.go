// Package export writes built meshes to Wavefront OBJ.
package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spaghettifunk/anima-cubes/engine/core"
	"github.com/spaghettifunk/anima-cubes/engine/renderer/metadata"
)

// WriteOBJ writes one object per geometry of meshes. Vertex and normal
// indices are 1-based and shared across the whole file. Nil meshes are
// skipped.
func WriteOBJ(w io.Writer, meshes []*metadata.Mesh) error {
	bw := bufio.NewWriter(w)
	offset := 1

	for _, m := range meshes {
		if m == nil {
			continue
		}
		for _, g := range m.Geometries {
			if len(g.Indices)%3 != 0 {
				return fmt.Errorf("geometry '%s' has %d indices, not a triangle list", g.Name, len(g.Indices))
			}
			fmt.Fprintf(bw, "o %s\n", g.Name)
			if g.MaterialName != "" {
				fmt.Fprintf(bw, "usemtl %s\n", g.MaterialName)
			}
			for _, v := range g.Vertices {
				fmt.Fprintf(bw, "v %g %g %g\n", v.Position.X, v.Position.Y, v.Position.Z)
			}
			for _, v := range g.Vertices {
				fmt.Fprintf(bw, "vn %g %g %g\n", v.Normal.X, v.Normal.Y, v.Normal.Z)
			}
			for i := 0; i < len(g.Indices); i += 3 {
				a := int(g.Indices[i+0]) + offset
				b := int(g.Indices[i+1]) + offset
				c := int(g.Indices[i+2]) + offset
				fmt.Fprintf(bw, "f %d//%d %d//%d %d//%d\n", a, a, b, b, c, c)
			}
			offset += len(g.Vertices)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write obj: %w", err)
	}
	return nil
}

// WriteOBJFile writes meshes to path, creating parent directories.
func WriteOBJFile(path string, meshes []*metadata.Mesh) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output file: %w", cerr)
		}
	}()

	if err := WriteOBJ(f, meshes); err != nil {
		return err
	}
	core.LogDebug("wrote %d meshes to %s", len(meshes), path)
	return nil
}
