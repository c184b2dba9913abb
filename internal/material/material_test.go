package material

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buu342/s64c/internal/scene"
)

const sampleYAML = `
materials:
  - name: wood
    type: texture
    cycle: G_CYC_1CYCLE
    render_mode_1: G_RM_AA_ZB_OPA_SURF
    render_mode_2: G_RM_AA_ZB_OPA_SURF2
    combine_mode_1: G_CC_MODULATEI
    combine_mode_2: G_CC_MODULATEI2
    tex_filter: G_TF_POINT
    geo_flags: [G_LIGHTING, G_SHADING_SMOOTH]
    width: 32
    height: 32
    coltype: G_IM_FMT_RGBA
    colsize: G_IM_SIZ_16b
    texmode_s: G_TX_WRAP
    texmode_t: G_TX_WRAP
  - name: flatred
    type: primcol
    r: 255
    g: 0
    b: 0
`

func TestLoadAndMerge(t *testing.T) {
	mats, err := Load(strings.NewReader(sampleYAML))
	require.NoError(t, err)
	require.Len(t, mats, 2)

	assert.Equal(t, scene.MaterialTexture, mats[0].Type)
	assert.Equal(t, 32, mats[0].Texture.Width)
	assert.True(t, mats[0].HasGeoFlag("G_LIGHTING"))

	assert.Equal(t, scene.MaterialPrimColor, mats[1].Type)
	assert.EqualValues(t, 255, mats[1].PrimColor.R)

	sc := &scene.Scene{Materials: []*scene.Material{scene.NoneMaterial()}}
	stub := sc.RequestMaterial("wood")
	assert.Equal(t, scene.MaterialOmit, stub.Type)

	Merge(sc, mats)

	require.Len(t, sc.Materials, 3) // None + wood (merged into stub) + flatred
	resolved := sc.FindMaterial("wood")
	require.NotNil(t, resolved)
	assert.Same(t, stub, resolved)
	assert.Equal(t, scene.MaterialTexture, resolved.Type)
	assert.NotNil(t, sc.FindMaterial("flatred"))
}

func TestLoadTooManyGeoFlags(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("materials:\n  - name: m\n    type: omit\n    geo_flags: [")
	for i := 0; i < scene.MaxGeoFlags+1; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("G_X")
	}
	sb.WriteString("]\n")

	_, err := Load(strings.NewReader(sb.String()))
	assert.Error(t, err)
}
