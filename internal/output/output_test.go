package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buu342/s64c/internal/cache"
	"github.com/buu342/s64c/internal/dlist"
	"github.com/buu342/s64c/internal/scene"
)

func buildTestScene(t *testing.T) (*scene.Scene, [][]dlist.Command) {
	t.Helper()
	mat := &scene.Material{
		Name: "wood", Type: scene.MaterialTexture,
		Cycle: "G_CYC_1CYCLE", RenderMode1: "G_RM_AA_ZB_OPA_SURF", RenderMode2: "G_RM_AA_ZB_OPA_SURF2",
		CombineMode1: "G_CC_MODULATEI", CombineMode2: "G_CC_MODULATEI2", TexFilter: "G_TF_POINT",
		GeoFlags: []string{"G_LIGHTING"},
		Texture:  scene.TextureData{Width: 32, Height: 32, ColType: "G_IM_FMT_RGBA", ColSize: "G_IM_SIZ_16b", TexModeS: "G_TX_WRAP", TexModeT: "G_TX_WRAP"},
	}
	mesh := &scene.Mesh{
		Name: "Body",
		Vertices: []scene.Vertex{
			{Pos: scene.Vector3{X: 0, Y: 0, Z: 0}, Normal: scene.Vector3{X: 0, Y: 1, Z: 0}, UV: scene.Vector2{X: 0.5, Y: 0.5}},
			{Pos: scene.Vector3{X: 1, Y: 0, Z: 0}, Normal: scene.Vector3{X: 0, Y: 1, Z: 0}, UV: scene.Vector2{X: 1, Y: 0}},
			{Pos: scene.Vector3{X: 0, Y: 1, Z: 0}, Normal: scene.Vector3{X: 0, Y: 1, Z: 0}, UV: scene.Vector2{X: 0, Y: 1}},
		},
		Faces: []scene.Face{{Verts: [3]int{0, 1, 2}, Material: mat}},
	}
	require.NoError(t, cache.Partition(mesh, 4))

	sc := &scene.Scene{Meshes: []*scene.Mesh{mesh}, Materials: []*scene.Material{scene.NoneMaterial(), mat}}

	synth := dlist.NewSynthesizer("Test", false, false, false)
	cmds := synth.Synthesize(mesh, dlist.ModeText)
	return sc, [][]dlist.Command{cmds}
}

func TestWriteTextProducesExpectedSections(t *testing.T) {
	sc, cmds := buildTestScene(t)
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, sc, TextOptions{ModelName: "Test"}, cmds))

	out := buf.String()
	assert.Contains(t, out, "static Vtx vtx_Test[] = {")
	assert.Contains(t, out, "static Gfx gfx_Test[] = {")
	assert.Contains(t, out, "gsSPEndDisplayList()")
	assert.Contains(t, out, "G_CC_PRIMLITE")
}

func TestWriteBinaryProducesValidHeader(t *testing.T) {
	sc, cmds := buildTestScene(t)
	var buf bytes.Buffer
	require.NoError(t, WriteBinary(&buf, sc, FlavorUltra, cmds))

	b := buf.Bytes()
	require.GreaterOrEqual(t, len(b), 14)
	magic := uint16(b[0])<<8 | uint16(b[1])
	assert.Equal(t, binaryMagic, magic)
	meshCount := uint16(b[2])<<8 | uint16(b[3])
	assert.Equal(t, uint16(1), meshCount)
}
