// Package output writes a synthesized scene to its final form: a C header
// with a stateful microcode display list, a compact binary asset, or an
// OpenGL-oriented C header with interleaved buffers.
package output

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"github.com/buu342/s64c/internal/dlist"
	"github.com/buu342/s64c/internal/microcode"
	"github.com/buu342/s64c/internal/scene"
)

// TextOptions configures WriteText's symbol prefixes.
type TextOptions struct {
	ModelName string
}

// WriteText writes a C header describing sc's vertex arrays and display
// lists, per spec.md §6's text-output layout. cmdsByMesh must be parallel
// to sc.Meshes (cmdsByMesh[i] is mesh i's synthesized command sequence).
func WriteText(w io.Writer, sc *scene.Scene, opt TextOptions, cmdsByMesh [][]dlist.Command) error {
	bw := bufio.NewWriter(w)
	multiMesh := len(sc.Meshes) > 1
	makeStructs := len(sc.Animations) > 0 || multiMesh

	fmt.Fprintf(bw, "// Generated by s64c\n\n")

	if makeStructs {
		fmt.Fprintf(bw, "// Model convenience macro\n#define MODEL_%s (&mdl_%s)\n\n", opt.ModelName, opt.ModelName)

		fmt.Fprintf(bw, "// Mesh data\n#define MESHCOUNT_%s %d\n\n", opt.ModelName, len(sc.Meshes))
		for i, m := range sc.Meshes {
			fmt.Fprintf(bw, "#define MESH_%s_%s %d\n", opt.ModelName, m.Name, i)
		}
		bw.WriteString("\n")

		fmt.Fprintf(bw, "// Animation data\n#define ANIMATIONCOUNT_%s %d\n\n", opt.ModelName, len(sc.Animations))
		for i, a := range sc.Animations {
			fmt.Fprintf(bw, "#define ANIMATION_%s_%s %d\n", opt.ModelName, a.Name, i)
		}
		bw.WriteString("\n")
	}

	bw.WriteString("// Custom combine mode to allow mixing primitive and vertex colors\n" +
		"#ifndef G_CC_PRIMLITE\n    #define G_CC_PRIMLITE SHADE,0,PRIMITIVE,0,0,0,0,PRIMITIVE\n#endif\n\n\n" +
		"/*********************************\n" +
		"              Models\n" +
		"*********************************/\n\n")

	for mi, m := range sc.Meshes {
		if err := writeMeshVertices(bw, m, opt.ModelName, multiMesh); err != nil {
			return err
		}
		writeMeshDisplayList(bw, m.Name, opt.ModelName, multiMesh, cmdsByMesh[mi])
	}

	if len(sc.Animations) > 0 {
		bw.WriteString("\n/*********************************\n" +
			"          Animation Data\n" +
			"*********************************/")
		for _, a := range sc.Animations {
			writeAnimation(bw, sc, a, opt.ModelName)
		}
	}

	if makeStructs {
		writeStructs(bw, sc, opt.ModelName, multiMesh)
	}

	return bw.Flush()
}

// writeMeshVertices emits the static Vtx array for one mesh, per each cache
// group's local vertex order. UV is s10.5 fixed point scaled by texture
// dimensions; the byte triple is vertex-normal*127 if G_LIGHTING is set,
// else vertex-color*255.
func writeMeshVertices(bw *bufio.Writer, m *scene.Mesh, modelName string, multiMesh bool) error {
	fmt.Fprintf(bw, "static Vtx vtx_%s", modelName)
	if multiMesh {
		fmt.Fprintf(bw, "_%s", m.Name)
	}
	bw.WriteString("[] = {\n")

	vertIndex := 0
	for _, group := range m.VertCaches {
		for localIdx, globalIdx := range group.Verts {
			v := m.Vertices[globalIdx]
			mat := findMaterialFromVert(group, localIdx)
			if mat == nil {
				return fmt.Errorf("mesh %q: inconsistent face/vertex texture information", m.Name)
			}

			var texW, texH int
			var normOrCol scene.Vector3
			switch mat.Type {
			case scene.MaterialTexture:
				texW, texH = mat.Texture.Width, mat.Texture.Height
				fallthrough
			case scene.MaterialPrimColor:
				if mat.HasGeoFlag("G_LIGHTING") {
					normOrCol = v.Normal.Scale(127)
				} else {
					normOrCol = v.Color.Scale(255)
				}
			case scene.MaterialOmit:
			}

			fmt.Fprintf(bw, "    {%d, %d, %d, 0, %d, %d, %d, %d, %d, 255}, /* %d */\n",
				round(v.Pos.X), round(v.Pos.Y), round(v.Pos.Z),
				floatToS10p5(v.UV.X*float32(texW)), floatToS10p5(v.UV.Y*float32(texH)),
				round(normOrCol.X), round(normOrCol.Y), round(normOrCol.Z),
				vertIndex,
			)
			vertIndex++
		}
	}
	bw.WriteString("};\n\n")
	return nil
}

// findMaterialFromVert returns the material of the first face in group that
// references the given local vertex index, or nil if no face references it
// (callers report nil as inconsistent face/vertex texture information). The
// materials of later faces sharing the same vertex are not compared.
func findMaterialFromVert(group scene.VertCache, localIdx int) *scene.Material {
	for _, f := range group.Faces {
		for _, v := range f.Verts {
			if v == localIdx {
				return f.Material
			}
		}
	}
	return nil
}

func writeMeshDisplayList(bw *bufio.Writer, meshName, modelName string, multiMesh bool, cmds []dlist.Command) {
	fmt.Fprintf(bw, "static Gfx gfx_%s", modelName)
	if multiMesh {
		fmt.Fprintf(bw, "_%s", meshName)
	}
	bw.WriteString("[] = {\n")
	for _, c := range cmds {
		if c.Separator {
			bw.WriteString("\n")
			continue
		}
		bw.WriteString(microcode.FormatText(c.Kind, c.Args))
	}
	bw.WriteString("};\n\n")
}

func writeAnimation(bw *bufio.Writer, sc *scene.Scene, a *scene.Animation, modelName string) {
	bw.WriteString("\n\n")
	for _, kf := range a.Keyframes {
		fmt.Fprintf(bw, "static s64Transform anim_%s_%s_framedata%d[] = {\n", modelName, a.Name, kf.Timestamp)
		for _, mesh := range sc.Meshes {
			for _, t := range kf.Transforms {
				if t.Mesh != mesh {
					continue
				}
				fmt.Fprintf(bw, "    {{%.4ff, %.4ff, %.4ff}, {%.4ff, %.4ff, %.4ff, %.4ff}, {%.4ff, %.4ff, %.4ff}},\n",
					t.Translation.X, t.Translation.Y, t.Translation.Z,
					t.Rotation.W, t.Rotation.X, t.Rotation.Y, t.Rotation.Z,
					t.Scale.X, t.Scale.Y, t.Scale.Z,
				)
				break
			}
		}
		bw.WriteString("};\n")
	}

	fmt.Fprintf(bw, "static s64KeyFrame anim_%s_%s_keyframes[] = {\n", modelName, a.Name)
	for _, kf := range a.Keyframes {
		fmt.Fprintf(bw, "    {%d, anim_%s_%s_framedata%d},\n", kf.Timestamp, modelName, a.Name, kf.Timestamp)
	}
	bw.WriteString("};")
}

func writeStructs(bw *bufio.Writer, sc *scene.Scene, modelName string, multiMesh bool) {
	bw.WriteString("\n\n\n/*********************************\n" +
		"        Sausage64 Structs\n" +
		"*********************************/\n\n")

	fmt.Fprintf(bw, "static s64Mesh meshes_%s[] = {\n", modelName)
	for _, m := range sc.Meshes {
		billboard := 0
		if m.HasProperty("Billboard") {
			billboard = 1
		}
		fmt.Fprintf(bw, "    {\"%s\", %d, ", m.Name, billboard)
		if multiMesh {
			fmt.Fprintf(bw, "gfx_%s_%s, ", modelName, m.Name)
		} else {
			fmt.Fprintf(bw, "gfx_%s, ", modelName)
		}
		if m.Parent != "" {
			fmt.Fprintf(bw, "%d", sc.MeshIndex(m.Parent))
		} else {
			bw.WriteString("-1")
		}
		bw.WriteString("},\n")
	}
	bw.WriteString("};\n\n")

	fmt.Fprintf(bw, "static s64Animation anims_%s[] = {\n", modelName)
	for _, a := range sc.Animations {
		fmt.Fprintf(bw, "    {\"%s\", %d, anim_%s_%s_keyframes},\n", a.Name, len(a.Keyframes), modelName, a.Name)
	}
	bw.WriteString("};\n\n")

	fmt.Fprintf(bw, "static s64ModelData mdl_%s = {%d, %d, meshes_%s, anims_%s};", modelName, len(sc.Meshes), len(sc.Animations), modelName, modelName)
}

func round(f float32) int {
	return int(math.Round(float64(f)))
}

// floatToS10p5 converts a float into s10.5 fixed-point representation
// (5 fractional bits), matching the original writer's UV encoding.
func floatToS10p5(f float32) int {
	return int(math.Round(float64(f) * 32))
}
