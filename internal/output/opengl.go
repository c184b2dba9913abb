package output

import (
	"bufio"
	"fmt"
	"io"

	"github.com/buu342/s64c/internal/scene"
)

// renderBlock groups consecutive faces sharing a material, the OpenGL
// emitter's non-stateful analogue of the microcode synthesizer's material
// gate (spec.md §6: "structure is analogous but does not share the
// stateful-diffing problem").
type renderBlock struct {
	mat        *scene.Material
	vertOffset int
	vertCount  int
	faceOffset int
	faceCount  int
}

func buildRenderBlocks(m *scene.Mesh) []renderBlock {
	var blocks []renderBlock
	var lastMat *scene.Material
	vertCount, faceCount := 0, 0
	minVert, maxVert := int(^uint(0)>>1), 0
	first := true

	for _, group := range m.VertCaches {
		for _, f := range group.Faces {
			if first || f.Material != lastMat {
				first = false
				lastMat = f.Material
				b := renderBlock{faceOffset: faceCount}
				if f.Material == nil || f.Material.Type == scene.MaterialOmit {
					b.mat = nil
				} else {
					b.mat = f.Material
				}
				if len(blocks) > 0 {
					prev := blocks[len(blocks)-1]
					b.vertOffset = prev.vertOffset + prev.vertCount
				}
				blocks = append(blocks, b)
				minVert, maxVert = int(^uint(0)>>1), 0
			}

			for _, v := range f.Verts {
				idx := vertCount + v
				if idx < minVert {
					minVert = idx
				}
				if idx > maxVert {
					maxVert = idx
				}
			}
			faceCount++
			last := &blocks[len(blocks)-1]
			last.faceCount = faceCount - last.faceOffset
			last.vertCount = maxVert - minVert + 1
		}
		vertCount += len(group.Verts)
	}
	return blocks
}

// WriteOpenGL writes sc as an OpenGL-oriented C header: per-material
// structs, interleaved vertex buffers, index buffers and render blocks.
func WriteOpenGL(w io.Writer, sc *scene.Scene, opt TextOptions) error {
	bw := bufio.NewWriter(w)
	multiMesh := len(sc.Meshes) > 1

	bw.WriteString("\n/*********************************\n             Materials\n*********************************/\n\n")
	for _, mat := range sc.Materials {
		if mat.Type == scene.MaterialOmit || mat.DontLoad {
			continue
		}
		switch mat.Type {
		case scene.MaterialTexture:
			fmt.Fprintf(bw, "static s64Texture matdata_%s = {&%s, %d, %d, %s, %s};\n",
				mat.Name, mat.Name, mat.Texture.Width, mat.Texture.Height,
				glFilter(mat.TexFilter), glWrap(mat.Texture.TexModeS))
			fmt.Fprintf(bw, "static s64Material mat_%s = {TYPE_TEXTURE, &matdata_%s, %d, %d, %d, %d, %d};\n\n",
				mat.Name, mat.Name, boolInt(mat.HasGeoFlag("G_LIGHTING")), boolInt(mat.HasGeoFlag("G_CULL_FRONT")),
				boolInt(mat.HasGeoFlag("G_CULL_BACK")), boolInt(mat.HasGeoFlag("G_SHADING_SMOOTH")), boolInt(mat.HasGeoFlag("G_ZBUFFER")))
		case scene.MaterialPrimColor:
			fmt.Fprintf(bw, "static s64PrimColor matdata_%s = {%d, %d, %d, 255};\n", mat.Name, mat.PrimColor.R, mat.PrimColor.G, mat.PrimColor.B)
			fmt.Fprintf(bw, "static s64Material mat_%s = {TYPE_PRIMCOL, &matdata_%s, %d, %d, %d, %d, %d};\n\n",
				mat.Name, mat.Name, boolInt(mat.HasGeoFlag("G_LIGHTING")), boolInt(mat.HasGeoFlag("G_CULL_FRONT")),
				boolInt(mat.HasGeoFlag("G_CULL_BACK")), boolInt(mat.HasGeoFlag("G_SHADING_SMOOTH")), boolInt(mat.HasGeoFlag("G_ZBUFFER")))
		}
	}

	bw.WriteString("\n/*********************************\n              Models\n*********************************/\n\n")
	for _, m := range sc.Meshes {
		writeGLMeshVertices(bw, m, opt.ModelName, multiMesh)
		writeGLMeshIndices(bw, m, opt.ModelName, multiMesh)
		writeGLRenderBlocks(bw, m, opt.ModelName, multiMesh)
	}

	return bw.Flush()
}

func writeGLMeshVertices(bw *bufio.Writer, m *scene.Mesh, modelName string, multiMesh bool) {
	fmt.Fprintf(bw, "static f32 vtx_%s", modelName)
	if multiMesh {
		fmt.Fprintf(bw, "_%s", m.Name)
	}
	bw.WriteString("[][11] = {\n")

	idx := 0
	for _, group := range m.VertCaches {
		for _, globalIdx := range group.Verts {
			v := m.Vertices[globalIdx]
			fmt.Fprintf(bw, "    {%.4ff, %.4ff, %.4ff, %.4ff, %.4ff, %.4ff, %.4ff, %.4ff, %.4ff, %.4ff, %.4ff}, /* %d */\n",
				v.Pos.X, v.Pos.Y, v.Pos.Z, v.UV.X, v.UV.Y,
				v.Normal.X, v.Normal.Y, v.Normal.Z,
				v.Color.X, v.Color.Y, v.Color.Z, idx)
			idx++
		}
	}
	bw.WriteString("};\n\n")
}

func writeGLMeshIndices(bw *bufio.Writer, m *scene.Mesh, modelName string, multiMesh bool) {
	fmt.Fprintf(bw, "static u16 ind_%s", modelName)
	if multiMesh {
		fmt.Fprintf(bw, "_%s", m.Name)
	}
	bw.WriteString("[][3] = {\n")

	faceIdx := 0
	vertBase := 0
	for _, group := range m.VertCaches {
		for _, f := range group.Faces {
			fmt.Fprintf(bw, "    {%d, %d, %d}, /* %d */\n",
				vertBase+f.Verts[0], vertBase+f.Verts[1], vertBase+f.Verts[2], faceIdx)
			faceIdx++
		}
		vertBase += len(group.Verts)
	}
	bw.WriteString("};\n\n")
}

func writeGLRenderBlocks(bw *bufio.Writer, m *scene.Mesh, modelName string, multiMesh bool) {
	blocks := buildRenderBlocks(m)
	suffix := ""
	if multiMesh {
		suffix = "_" + m.Name
	}

	fmt.Fprintf(bw, "static s64RenderBlock renb_%s%s[] = {\n", modelName, suffix)
	for _, b := range blocks {
		fmt.Fprintf(bw, "\t{&vtx_%s%s[%d], %d, %d, &ind_%s%s[%d], ", modelName, suffix, b.vertOffset, b.vertCount, b.faceCount, modelName, suffix, b.faceOffset)
		if b.mat != nil {
			fmt.Fprintf(bw, "&mat_%s},\n", b.mat.Name)
		} else {
			bw.WriteString("NULL},\n")
		}
	}
	bw.WriteString("};\n\n")

	fmt.Fprintf(bw, "static s64Gfx gfx_%s%s = {%d, 0xFFFFFFFF, 0xFFFFFFFF, 0xFFFFFFFF, renb_%s%s};\n\n", modelName, suffix, len(blocks), modelName, suffix)
}

func glFilter(texFilter string) string {
	if texFilter == "G_TF_POINT" {
		return "GL_NEAREST"
	}
	return "GL_LINEAR"
}

func glWrap(mode string) string {
	switch mode {
	case "G_TX_MIRROR":
		return "GL_MIRRORED_REPEAT_ARB"
	case "G_TX_WRAP":
		return "GL_REPEAT"
	default:
		return "GL_CLAMP"
	}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
