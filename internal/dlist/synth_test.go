package dlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buu342/s64c/internal/cache"
	"github.com/buu342/s64c/internal/microcode"
	"github.com/buu342/s64c/internal/scene"
)

func textureMaterial(name string) *scene.Material {
	return &scene.Material{
		Name:        name,
		Type:        scene.MaterialTexture,
		Cycle:       "G_CYC_1CYCLE",
		RenderMode1: "G_RM_AA_ZB_OPA_SURF",
		RenderMode2: "G_RM_AA_ZB_OPA_SURF2",
		CombineMode1: "G_CC_MODULATEI",
		CombineMode2: "G_CC_MODULATEI2",
		TexFilter:   "G_TF_POINT",
		GeoFlags:    []string{"G_LIGHTING", "G_SHADING_SMOOTH"},
		Texture: scene.TextureData{
			Width: 32, Height: 32,
			ColType: "G_IM_FMT_RGBA", ColSize: "G_IM_SIZ_16b",
			TexModeS: "G_TX_WRAP", TexModeT: "G_TX_WRAP",
		},
	}
}

func kindsOf(cmds []Command) []microcode.CommandKind {
	var out []microcode.CommandKind
	for _, c := range cmds {
		if !c.Separator {
			out = append(out, c.Kind)
		}
	}
	return out
}

// scenario (A): single triangle, no prior state, initial-load not elided.
func TestSynthesizeScenarioA(t *testing.T) {
	mat := textureMaterial("wood")
	mesh := &scene.Mesh{
		Name:     "M",
		Vertices: make([]scene.Vertex, 3),
		Faces:    []scene.Face{{Verts: [3]int{0, 1, 2}, Material: mat}},
	}
	require.NoError(t, cache.Partition(mesh, 4))

	s := NewSynthesizer("Model", false, false, false)
	cmds := s.Synthesize(mesh, ModeText)

	got := kindsOf(cmds)
	want := []microcode.CommandKind{
		microcode.DPSetCycleType, microcode.DPSetRenderMode, microcode.DPSetCombineMode,
		microcode.DPSetTextureFilter, microcode.SPClearGeometryMode, microcode.SPSetGeometryMode,
		microcode.DPLoadTextureBlock, microcode.DPPipeSync,
		microcode.SPVertex, microcode.SP1Triangle, microcode.SPEndDisplayList,
	}
	assert.Equal(t, want, got)
}

// scenario (B): two adjacent faces, same material, two-tri enabled -> exactly one SP2Triangles.
func TestSynthesizeScenarioBFusion(t *testing.T) {
	mat := textureMaterial("wood")
	mesh := &scene.Mesh{
		Name:     "M",
		Vertices: make([]scene.Vertex, 4),
		Faces: []scene.Face{
			{Verts: [3]int{0, 1, 2}, Material: mat},
			{Verts: [3]int{0, 2, 3}, Material: mat},
		},
	}
	require.NoError(t, cache.Partition(mesh, 4))

	s := NewSynthesizer("Model", false, false, false)
	cmds := s.Synthesize(mesh, ModeText)

	count := 0
	for _, c := range cmds {
		if c.Kind == microcode.SP2Triangles {
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.NotContains(t, kindsOf(cmds), microcode.SP1Triangle)
}

// scenario (C): same as (B) but two-tri disabled -> exactly two SP1Triangle.
func TestSynthesizeScenarioCNoTwoTriDisabled(t *testing.T) {
	mat := textureMaterial("wood")
	mesh := &scene.Mesh{
		Name:     "M",
		Vertices: make([]scene.Vertex, 4),
		Faces: []scene.Face{
			{Verts: [3]int{0, 1, 2}, Material: mat},
			{Verts: [3]int{0, 2, 3}, Material: mat},
		},
	}
	require.NoError(t, cache.Partition(mesh, 4))

	s := NewSynthesizer("Model", false, false, true)
	cmds := s.Synthesize(mesh, ModeText)

	count := 0
	for _, c := range cmds {
		if c.Kind == microcode.SP1Triangle {
			count++
		}
	}
	assert.Equal(t, 2, count)
	assert.NotContains(t, kindsOf(cmds), microcode.SP2Triangles)
}

// scenario (D): material change between faces, only cycle differs -> single DPSetCycleType
// followed by DPPipeSync, no other state commands.
func TestSynthesizeScenarioDOnlyCycleDiffers(t *testing.T) {
	mat1 := textureMaterial("wood")
	mat2 := textureMaterial("wood")
	mat2.Name = "wood2"
	mat2.Cycle = "G_CYC_2CYCLE"
	mat2.DontLoad = true // isolate cycle-only diff: skip texture payload re-emission

	mesh := &scene.Mesh{
		Name:     "M",
		Vertices: make([]scene.Vertex, 6),
		Faces: []scene.Face{
			{Verts: [3]int{0, 1, 2}, Material: mat1},
			{Verts: [3]int{3, 4, 5}, Material: mat2},
		},
	}
	require.NoError(t, cache.Partition(mesh, 10))
	mat1.DontLoad = true

	s := NewSynthesizer("Model", false, true, false) // initial-load elided: mat1 causes no emission
	cmds := s.Synthesize(mesh, ModeText)

	got := kindsOf(cmds)
	want := []microcode.CommandKind{
		microcode.SPVertex,
		microcode.SP1Triangle, // mat1's face, first: no emission due to elision
		microcode.DPSetCycleType, microcode.DPPipeSync,
		microcode.SP1Triangle,
		microcode.SPEndDisplayList,
	}
	assert.Equal(t, want, got)
}

func TestSynthesizeLastMaterialPersistsAcrossMeshes(t *testing.T) {
	mat := textureMaterial("wood")
	mesh1 := &scene.Mesh{Name: "A", Vertices: make([]scene.Vertex, 3), Faces: []scene.Face{{Verts: [3]int{0, 1, 2}, Material: mat}}}
	mesh2 := &scene.Mesh{Name: "B", Vertices: make([]scene.Vertex, 3), Faces: []scene.Face{{Verts: [3]int{0, 1, 2}, Material: mat}}}
	require.NoError(t, cache.Partition(mesh1, 4))
	require.NoError(t, cache.Partition(mesh2, 4))

	s := NewSynthesizer("Model", true, false, false)
	_ = s.Synthesize(mesh1, ModeText)
	cmds2 := s.Synthesize(mesh2, ModeText)

	// Same material carried over: mesh2's single face needs no material state commands.
	got := kindsOf(cmds2)
	assert.Equal(t, []microcode.CommandKind{microcode.SPVertex, microcode.SP1Triangle, microcode.SPEndDisplayList}, got)
}

func TestSynthesizeInterGroupBlankLineTextOnly(t *testing.T) {
	mat := textureMaterial("wood")
	mesh := &scene.Mesh{
		Name:     "M",
		Vertices: make([]scene.Vertex, 6),
		Faces: []scene.Face{
			{Verts: [3]int{0, 1, 2}, Material: mat},
			{Verts: [3]int{3, 4, 5}, Material: mat},
		},
	}
	require.NoError(t, cache.Partition(mesh, 3)) // forces two groups

	sText := NewSynthesizer("Model", false, false, false)
	cmdsText := sText.Synthesize(mesh, ModeText)
	sepCount := 0
	for _, c := range cmdsText {
		if c.Separator {
			sepCount++
		}
	}
	assert.Equal(t, 1, sepCount)

	sBin := NewSynthesizer("Model", false, false, false)
	cmdsBin := sBin.Synthesize(mesh, ModeBinary)
	for _, c := range cmdsBin {
		assert.False(t, c.Separator)
	}
}
