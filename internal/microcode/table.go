// Package microcode defines the fixed-function GPU's command set: the
// textual macro table used to resolve geometry/combine/render-mode flag
// names to numeric values, the per-command arity table, the binary packing
// rules (§4.2) and the text formatter (§4.3).
package microcode

import "fmt"

// CommandKind enumerates every microcode command the display-list
// synthesizer can emit. Name matches the "gs<Name>" macro used by the text
// formatter.
type CommandKind int

const (
	DPSetCycleType CommandKind = iota
	DPSetRenderMode
	DPSetCombineMode
	DPSetTextureFilter
	SPClearGeometryMode
	SPSetGeometryMode
	DPLoadTextureBlock
	DPLoadTextureBlock4b
	DPSetPrimColor
	SPVertex
	SP1Triangle
	SP2Triangles
	DPPipeSync
	SPEndDisplayList
	// DPSetCombineLERP is never emitted directly — Encode rewrites
	// DPSetCombineMode's cmd-id to this value for the binary command-id
	// word, per spec.md §4.2.
	DPSetCombineLERP
)

// commandInfo names a command and its textual argument arity.
type commandInfo struct {
	name  string
	arity int
}

var commandTable = map[CommandKind]commandInfo{
	DPSetCycleType:       {"DPSetCycleType", 1},
	DPSetRenderMode:      {"DPSetRenderMode", 2},
	DPSetCombineMode:     {"DPSetCombineMode", 2},
	DPSetTextureFilter:   {"DPSetTextureFilter", 1},
	SPClearGeometryMode:  {"SPClearGeometryMode", 1},
	SPSetGeometryMode:    {"SPSetGeometryMode", 1},
	DPLoadTextureBlock:   {"DPLoadTextureBlock", 12},
	DPLoadTextureBlock4b: {"DPLoadTextureBlock_4b", 11},
	DPSetPrimColor:       {"DPSetPrimColor", 6},
	SPVertex:             {"SPVertex", 3},
	SP1Triangle:          {"SP1Triangle", 4},
	SP2Triangles:         {"SP2Triangles", 8},
	DPPipeSync:           {"DPPipeSync", 0},
	SPEndDisplayList:     {"SPEndDisplayList", 0},
	DPSetCombineLERP:     {"DPSetCombineLERP", 0},
}

// Name returns the command's "gs<Name>" identifier.
func Name(c CommandKind) string {
	return commandTable[c].name
}

// Arity returns the command's expected textual argument count.
func Arity(c CommandKind) int {
	return commandTable[c].arity
}

// supportedBinary is the subset of commands the binary encoder accepts,
// matching spec.md §4.2's rejection-list-enforced set exactly.
var supportedBinary = map[CommandKind]bool{
	DPSetCycleType:       true,
	DPSetRenderMode:      true,
	DPSetCombineMode:     true,
	DPSetTextureFilter:   true,
	SPClearGeometryMode:  true,
	SPSetGeometryMode:    true,
	DPLoadTextureBlock:   true,
	DPLoadTextureBlock4b: true,
	DPSetPrimColor:       true,
	SPVertex:             true,
	SP1Triangle:          true,
	SP2Triangles:         true,
	DPPipeSync:           true,
	SPEndDisplayList:     true,
}

// IsBinarySupported reports whether c has a binary payload layout.
func IsBinarySupported(c CommandKind) bool {
	return supportedBinary[c]
}

// macroTable resolves G_-prefixed microcode macro names to their numeric
// values. This is a small, representative subset of the real GBI macro set
// (cycle types, render modes, combine/filter modes, geometry flags and
// texture wrap/LOD macros) sufficient to drive the encoder and formatter;
// an unrecognized G_ name is a lookup miss handled by resolveArg's documented
// fallback (spec.md §9).
var macroTable = map[string]uint32{
	// Cycle types
	"G_CYC_1CYCLE": 0,
	"G_CYC_2CYCLE": 1,
	"G_CYC_COPY":   2,
	"G_CYC_FILL":   3,

	// Render modes (illustrative subset; real values are bitfields)
	"G_RM_AA_ZB_OPA_SURF":  0x0F0A4000,
	"G_RM_AA_ZB_OPA_SURF2": 0x0F0A4000,
	"G_RM_ZB_OPA_SURF":     0x00302048,
	"G_RM_ZB_OPA_SURF2":    0x00302048,
	"G_RM_NOOP":            0,
	"G_RM_NOOP2":           0,

	// Texture filter
	"G_TF_POINT":    0,
	"G_TF_AVERAGE":  3,
	"G_TF_BILERP":   2,

	// Geometry mode flags
	"G_LIGHTING":        0x00020000,
	"G_SHADING_SMOOTH":  0x00200000,
	"G_ZBUFFER":         0x00000001,
	"G_CULL_FRONT":      0x00000200,
	"G_CULL_BACK":       0x00000400,
	"G_FOG":             0x00010000,
	"G_TEXTURE_GEN":     0x00040000,
	"G_TEXTURE_GEN_LINEAR": 0x00080000,

	// Texture color types
	"G_IM_FMT_RGBA": 0,
	"G_IM_FMT_YUV":  1,
	"G_IM_FMT_CI":   2,
	"G_IM_FMT_IA":   3,
	"G_IM_FMT_I":    4,

	// Texture color sizes
	"G_IM_SIZ_4b":  0,
	"G_IM_SIZ_8b":  1,
	"G_IM_SIZ_16b": 2,
	"G_IM_SIZ_32b": 3,

	// Texture wrap modes
	"G_TX_WRAP":   0,
	"G_TX_MIRROR": 1,
	"G_TX_CLAMP":  2,
	"G_TX_NOLOD":  0,
}

// ResolveMacro looks up a G_-prefixed macro name. ok is false if unknown.
func ResolveMacro(name string) (uint32, bool) {
	v, ok := macroTable[name]
	return v, ok
}

// combineMacroTable resolves combine-mode macro names used by
// DPSetCombineMode to their 8-byte (two 4-word, byte-packed) encoding. Each
// entry is the 8 color/alpha cycle bytes as the original GBI combine macros
// pack them (A,B,C,D for color then A,B,C,D for alpha, one byte each).
var combineMacroTable = map[string][8]byte{
	"G_CC_MODULATEI":  {1, 0, 6, 0, 0, 0, 0, 0},
	"G_CC_MODULATEI2": {1, 0, 6, 0, 0, 0, 0, 0},
	"G_CC_PRIMLITE":   {4, 0, 2, 0, 0, 0, 0, 2}, // SHADE,0,PRIMITIVE,0,0,0,0,PRIMITIVE
	"G_CC_SHADE":      {4, 0, 0, 4, 0, 0, 0, 4},
	"G_CC_DECALRGBA":  {0, 0, 0, 1, 0, 0, 0, 1},
}

// ResolveCombineMacro looks up a combine-mode macro's packed bytes.
func ResolveCombineMacro(name string) ([8]byte, bool) {
	v, ok := combineMacroTable[name]
	return v, ok
}

func errUnsupportedBinary(c CommandKind) error {
	return fmt.Errorf("unsupported binary display-list command %s", Name(c))
}
