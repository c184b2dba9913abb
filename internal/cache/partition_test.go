package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buu342/s64c/internal/scene"
)

func meshWithFaces(faces ...[3]int) *scene.Mesh {
	m := &scene.Mesh{Name: "M"}
	maxV := 0
	for _, f := range faces {
		for _, v := range f {
			if v+1 > maxV {
				maxV = v + 1
			}
		}
	}
	m.Vertices = make([]scene.Vertex, maxV)
	mat := &scene.Material{Name: "mat"}
	for _, f := range faces {
		m.Faces = append(m.Faces, scene.Face{Verts: f, Material: mat})
	}
	return m
}

func TestPartitionRejectsSmallCacheSize(t *testing.T) {
	m := meshWithFaces([3]int{0, 1, 2})
	err := Partition(m, 2)
	assert.Error(t, err)
}

func TestPartitionSingleGroupWhenItFits(t *testing.T) {
	m := meshWithFaces([3]int{0, 1, 2}, [3]int{0, 2, 3})
	require.NoError(t, Partition(m, 4))
	require.Len(t, m.VertCaches, 1)
	assert.Equal(t, []int{0, 1, 2, 3}, m.VertCaches[0].Verts)
	assert.Equal(t, [3]int{0, 1, 2}, m.VertCaches[0].Faces[0].Verts)
	assert.Equal(t, [3]int{0, 2, 3}, m.VertCaches[0].Faces[1].Verts)
}

func TestPartitionSplitsWhenCacheFull(t *testing.T) {
	// Each face introduces 3 brand-new vertices; size 3 forces one group per face.
	m := meshWithFaces([3]int{0, 1, 2}, [3]int{3, 4, 5})
	require.NoError(t, Partition(m, 3))
	require.Len(t, m.VertCaches, 2)
	assert.Equal(t, []int{0, 1, 2}, m.VertCaches[0].Verts)
	assert.Equal(t, []int{3, 4, 5}, m.VertCaches[1].Verts)
	assert.Equal(t, [3]int{0, 1, 2}, m.VertCaches[1].Faces[0].Verts)
}

func TestPartitionNoFaceReferencesOutsideGroup(t *testing.T) {
	m := meshWithFaces(
		[3]int{0, 1, 2},
		[3]int{2, 3, 4}, // shares vertex 2 with the previous face
		[3]int{5, 6, 7},
	)
	require.NoError(t, Partition(m, 5))
	for _, g := range m.VertCaches {
		seen := map[int]bool{}
		for i := range g.Verts {
			seen[i] = true
		}
		for _, f := range g.Faces {
			for _, v := range f.Verts {
				assert.True(t, seen[v], "face references local index %d outside its group", v)
			}
		}
	}
}
