// Package dlist implements the display-list synthesizer: the core
// component that walks a mesh's vertex-cache groups and produces an
// ordered sequence of microcode commands reproducing each face's required
// material state while emitting as little redundant state as possible.
package dlist

import (
	"fmt"
	"strings"

	"github.com/buu342/s64c/internal/microcode"
	"github.com/buu342/s64c/internal/scene"
)

// Mode selects the symbol/comment conventions relevant to synthesis (the
// inter-group blank-line separator is Text-only; §4.1(d)).
type Mode int

const (
	ModeBinary Mode = iota
	ModeText
)

// Command is one synthesized microcode call: a command kind plus its
// textual argument list, in the same form both the binary encoder and the
// text formatter consume. Separator marks a blank inter-group line and
// carries no command.
type Command struct {
	Kind      microcode.CommandKind
	Args      []string
	Separator bool
}

// Synthesizer holds the emission state that persists across every mesh
// processed during a single compiler run (spec.md §5: "last_material
// persists across meshes within one output"). Construct one Synthesizer per
// compiler invocation and call Synthesize once per mesh, in mesh
// declaration order.
type Synthesizer struct {
	ModelName         string
	MultiMesh         bool
	InitialLoadElided bool
	NoTwoTri          bool

	lastMaterial *scene.Material
	seenAny      bool
}

// NewSynthesizer builds a Synthesizer for one compiler run.
func NewSynthesizer(modelName string, multiMesh, initialLoadElided, noTwoTri bool) *Synthesizer {
	return &Synthesizer{
		ModelName:         modelName,
		MultiMesh:         multiMesh,
		InitialLoadElided: initialLoadElided,
		NoTwoTri:          noTwoTri,
	}
}

// Synthesize produces mesh's command sequence per §4.1's algorithm.
// vertexIndexCursor starts at 0 for each mesh (it is a per-mesh running
// offset, unlike last_material which carries across meshes).
func (s *Synthesizer) Synthesize(mesh *scene.Mesh, mode Mode) []Command {
	var cmds []Command
	vertexIndexCursor := 0

	for gi, group := range mesh.VertCaches {
		loadedVerts := false
		faces := group.Faces

		for i := 0; i < len(faces); {
			f := faces[i]
			m := f.Material

			cmds = append(cmds, s.materialGate(m)...)

			if !loadedVerts {
				cmds = append(cmds, s.vertexLoad(mesh, &vertexIndexCursor, len(group.Verts)))
				loadedVerts = true
			}

			fuse := !s.NoTwoTri && i+1 < len(faces) && faces[i+1].Material == s.lastMaterial
			if fuse {
				j := faces[i+1]
				cmds = append(cmds, Command{Kind: microcode.SP2Triangles, Args: []string{
					itoa(f.Verts[0]), itoa(f.Verts[1]), itoa(f.Verts[2]), "0",
					itoa(j.Verts[0]), itoa(j.Verts[1]), itoa(j.Verts[2]), "0",
				}})
				i += 2
			} else {
				cmds = append(cmds, Command{Kind: microcode.SP1Triangle, Args: []string{
					itoa(f.Verts[0]), itoa(f.Verts[1]), itoa(f.Verts[2]), "0",
				}})
				i++
			}
		}

		if mode == ModeText && gi < len(mesh.VertCaches)-1 {
			cmds = append(cmds, Command{Separator: true})
		}
	}

	cmds = append(cmds, Command{Kind: microcode.SPEndDisplayList})
	return cmds
}

// materialGate implements §4.1(a): the material-change gate, including the
// cycle/render/combine/filter diffs, geometry-mode diff, material payload
// emission and pipesync coalescing.
func (s *Synthesizer) materialGate(m *scene.Material) []Command {
	if s.lastMaterial == nil && s.InitialLoadElided {
		s.lastMaterial = m
		return nil
	}
	if s.lastMaterial == m || m == nil || m.Type == scene.MaterialOmit {
		return nil
	}

	var cmds []Command
	pipesyncNeeded := false
	old := s.lastMaterial

	differs := func(a, b string) bool { return old == nil || a != b }

	if differs(m.Cycle, safeField(old, func(mm *scene.Material) string { return mm.Cycle })) {
		cmds = append(cmds, Command{Kind: microcode.DPSetCycleType, Args: []string{m.Cycle}})
		pipesyncNeeded = true
	}
	renderDiffers := old == nil ||
		m.RenderMode1 != old.RenderMode1 || m.RenderMode2 != old.RenderMode2
	if renderDiffers {
		cmds = append(cmds, Command{Kind: microcode.DPSetRenderMode, Args: []string{m.RenderMode1, m.RenderMode2}})
		pipesyncNeeded = true
	}
	combineDiffers := old == nil ||
		m.CombineMode1 != old.CombineMode1 || m.CombineMode2 != old.CombineMode2
	if combineDiffers {
		cmds = append(cmds, Command{Kind: microcode.DPSetCombineMode, Args: []string{m.CombineMode1, m.CombineMode2}})
		pipesyncNeeded = true
	}
	if differs(m.TexFilter, safeField(old, func(mm *scene.Material) string { return mm.TexFilter })) {
		cmds = append(cmds, Command{Kind: microcode.DPSetTextureFilter, Args: []string{m.TexFilter}})
		pipesyncNeeded = true
	}

	if geometryModeChanged(old, m) {
		cmds = append(cmds, Command{Kind: microcode.SPClearGeometryMode, Args: []string{"0xFFFFFFFF"}})
		cmds = append(cmds, Command{Kind: microcode.SPSetGeometryMode, Args: []string{strings.Join(m.GeoFlags, " | ")}})
	}

	if !m.DontLoad {
		switch m.Type {
		case scene.MaterialTexture:
			kind := microcode.DPLoadTextureBlock
			if m.Texture.ColSize == "G_IM_SIZ_4b" {
				kind = microcode.DPLoadTextureBlock4b
			}
			args := []string{m.Name, m.Texture.ColType}
			if kind == microcode.DPLoadTextureBlock {
				args = append(args, m.Texture.ColSize)
			}
			args = append(args,
				itoa(m.Texture.Width), itoa(m.Texture.Height), "0",
				m.Texture.TexModeS, m.Texture.TexModeT,
				itoa(nearestPow2(m.Texture.Width)), itoa(nearestPow2(m.Texture.Height)),
				"G_TX_NOLOD", "G_TX_NOLOD",
			)
			cmds = append(cmds, Command{Kind: kind, Args: args})
			pipesyncNeeded = true
		case scene.MaterialPrimColor:
			cmds = append(cmds, Command{Kind: microcode.DPSetPrimColor, Args: []string{
				"0", "0", itoa(int(m.PrimColor.R)), itoa(int(m.PrimColor.G)), itoa(int(m.PrimColor.B)), "255",
			}})
		}
	}

	if pipesyncNeeded {
		cmds = append(cmds, Command{Kind: microcode.DPPipeSync})
	}

	s.lastMaterial = m
	return cmds
}

// vertexLoad implements §4.1(b).
func (s *Synthesizer) vertexLoad(mesh *scene.Mesh, cursor *int, count int) Command {
	symbol := "vtx_" + s.ModelName
	if s.MultiMesh {
		symbol += "_" + mesh.Name
	}
	symbol += fmt.Sprintf("+%d", *cursor)
	*cursor += count
	return Command{Kind: microcode.SPVertex, Args: []string{symbol, itoa(count), "0"}}
}

// geometryModeChanged compares two materials' geo-flag sets as multisets by
// name, per §4.1.
func geometryModeChanged(old, m *scene.Material) bool {
	if old == nil {
		return true
	}
	if len(old.GeoFlags) != len(m.GeoFlags) {
		return true
	}
	for _, f := range m.GeoFlags {
		found := false
		for _, of := range old.GeoFlags {
			if of == f {
				found = true
				break
			}
		}
		if !found {
			return true
		}
	}
	return false
}

func safeField(m *scene.Material, get func(*scene.Material) string) string {
	if m == nil {
		return ""
	}
	return get(m)
}

func nearestPow2(v int) int {
	p := 1
	for p < v {
		p <<= 1
	}
	return p
}

func itoa(v int) string {
	return fmt.Sprintf("%d", v)
}
