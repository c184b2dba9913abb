// Package cache implements the vertex-cache partitioner: it splits a mesh's
// face list into ordered groups ("vertex caches") sized to fit a hardware
// vertex cache, so the display-list synthesizer can emit one "load N
// vertices" command per group and address triangles with group-local
// indices.
//
// spec.md treats the partitioning *algorithm* as an external collaborator —
// the synthesizer only consumes its output. This package supplies a
// straightforward greedy implementation so the pipeline is runnable
// end-to-end; it makes no claim to match any particular upstream optimizer's
// grouping quality.
package cache

import (
	"fmt"

	"github.com/buu342/s64c/internal/scene"
)

// DefaultSize is the default vertex-cache size (spec.md §6 "-c", default 32).
const DefaultSize = 32

// MinSize is the minimum allowed vertex-cache size (spec.md §3, §7).
const MinSize = 3

// Partition splits mesh into vertex-cache groups of at most size vertices
// each, in face-declaration order, and stores the result on mesh.VertCaches.
//
// A new group opens whenever adding the next face's not-yet-seen vertices
// to the current group would exceed size. Within a group, face vertex
// indices are rewritten from global mesh-vertex indices to local
// (group-relative) indices, per the invariant that no face in group g
// references a vertex outside group g.
func Partition(mesh *scene.Mesh, size int) error {
	if size < MinSize {
		return fmt.Errorf("vertex cache size %d is below the minimum of %d", size, MinSize)
	}

	var groups []scene.VertCache
	var curVerts []int
	localIndex := map[int]int{}
	var curFaces []scene.Face

	flush := func() {
		if len(curVerts) == 0 && len(curFaces) == 0 {
			return
		}
		groups = append(groups, scene.VertCache{Verts: curVerts, Faces: curFaces})
		curVerts = nil
		curFaces = nil
		localIndex = map[int]int{}
	}

	for _, f := range mesh.Faces {
		newCount := 0
		for _, gv := range f.Verts {
			if _, ok := localIndex[gv]; !ok {
				newCount++
			}
		}
		if len(curVerts)+newCount > size && len(curVerts) > 0 {
			flush()
		}

		var local scene.Face
		local.Material = f.Material
		for i, gv := range f.Verts {
			li, ok := localIndex[gv]
			if !ok {
				li = len(curVerts)
				localIndex[gv] = li
				curVerts = append(curVerts, gv)
			}
			local.Verts[i] = li
		}
		curFaces = append(curFaces, local)
	}
	flush()

	mesh.VertCaches = groups
	return nil
}

// PartitionAll partitions every mesh in the scene with the same cache size.
func PartitionAll(sc *scene.Scene, size int) error {
	for _, m := range sc.Meshes {
		if err := Partition(m, size); err != nil {
			return fmt.Errorf("mesh %q: %w", m.Name, err)
		}
	}
	return nil
}
