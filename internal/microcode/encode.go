package microcode

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/buu342/s64c/internal/scene"
)

// Record is one encoded microcode command: a command-id word followed by
// its payload words, big-endian throughout.
type Record struct {
	CmdID   CommandKind
	Payload []uint32
}

// Bytes serializes r as cmd_id(u32) followed by payload words, all
// big-endian, matching §6's display-list blob record format.
func (r Record) Bytes() []byte {
	buf := make([]byte, 4+4*len(r.Payload))
	binary.BigEndian.PutUint32(buf[0:4], uint32(r.CmdID))
	for i, w := range r.Payload {
		binary.BigEndian.PutUint32(buf[4+4*i:8+4*i], w)
	}
	return buf
}

// resolveArg parses one textual command argument per §4.2: a G_-prefixed
// name is a macro-table lookup, 0x-prefixed is hex, otherwise decimal. An
// unresolvable macro name falls back to 0 (documented quirk, spec.md §9) —
// this is intentional and must not be "fixed" into an error.
func resolveArg(tok string) uint32 {
	switch {
	case strings.HasPrefix(tok, "G_"):
		if v, ok := ResolveMacro(tok); ok {
			return v
		}
		return 0
	case strings.HasPrefix(tok, "0x"), strings.HasPrefix(tok, "0X"):
		v, err := strconv.ParseUint(tok[2:], 16, 32)
		if err != nil {
			return 0
		}
		return uint32(v)
	default:
		v, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			return 0
		}
		return uint32(v)
	}
}

// pointerOffset parses a "<symbol>+<offset>" expression and returns the
// integer after '+', per §4.2's SPVertex first-argument rule.
func pointerOffset(expr string) uint32 {
	idx := strings.LastIndex(expr, "+")
	if idx < 0 {
		return resolveArg(expr)
	}
	return resolveArg(expr[idx+1:])
}

// Encode packs cmd's textual arguments into a binary Record per §4.2's
// per-command payload layout. materials is the global material list, used
// to resolve DPLoadTextureBlock(_4b)'s texture-name argument to an index.
func Encode(cmd CommandKind, args []string, materials []*scene.Material) (Record, error) {
	if !IsBinarySupported(cmd) {
		return Record{}, errUnsupportedBinary(cmd)
	}

	switch cmd {
	case DPLoadTextureBlock, DPLoadTextureBlock4b:
		return encodeLoadTextureBlock(cmd, args, materials)
	case SPVertex:
		return encodeSPVertex(args)
	case SP1Triangle:
		return encodeSP1Triangle(args)
	case SP2Triangles:
		return encodeSP2Triangles(args)
	case DPSetPrimColor:
		return encodeDPSetPrimColor(args)
	case DPSetCombineMode:
		return encodeDPSetCombineMode(args)
	default:
		payload := make([]uint32, len(args))
		for i, a := range args {
			payload[i] = resolveArg(a)
		}
		return Record{CmdID: cmd, Payload: payload}, nil
	}
}

func materialIndex(name string, materials []*scene.Material) uint16 {
	for i, m := range materials {
		if m.Name == name {
			return uint16(i)
		}
	}
	return 0
}

// nearestPow2 returns the smallest power of two >= v (v>0), matching the
// source's texture-dimension rounding used for G_TX_NOLOD mip parameters.
func nearestPow2(v int) uint8 {
	p := 1
	for p < v {
		p <<= 1
	}
	return uint8(p)
}

func packWord(b0, b1, b2, b3 byte) uint32 {
	return uint32(b0)<<24 | uint32(b1)<<16 | uint32(b2)<<8 | uint32(b3)
}

func encodeLoadTextureBlock(cmd CommandKind, args []string, materials []*scene.Material) (Record, error) {
	// args: name, coltype, [colsize,] w, h, 0, texmode_s, texmode_t, pow2w, pow2h, nolod, nolod
	minArgs := 11
	if cmd == DPLoadTextureBlock {
		minArgs = 12
	}
	if len(args) < minArgs {
		return Record{}, fmt.Errorf("%s: expected at least %d arguments, got %d", Name(cmd), minArgs, len(args))
	}
	idx := materialIndex(args[0], materials)
	coltype := byte(resolveArg(args[1]))

	rest := args[2:]
	var colsize byte
	if cmd == DPLoadTextureBlock {
		colsize = byte(resolveArg(rest[0]))
		rest = rest[1:]
	}

	w := resolveArg(rest[0])
	h := resolveArg(rest[1])
	texmodeS := byte(resolveArg(rest[3]))
	texmodeT := byte(resolveArg(rest[4]))
	pow2w := nearestPow2(int(w))
	pow2h := nearestPow2(int(h))
	// rest is now [w, h, "0", texS, texT, pow2w, pow2h, nolod, nolod]; the
	// synthesizer always supplies both nolod tokens, identical, at [7]/[8].
	nolod := byte(resolveArg(rest[7]))

	word0 := packWord(byte(idx>>8), byte(idx), coltype, colsize)
	word1 := packWord(byte(w>>8), byte(w), byte(h>>8), byte(h))
	word2 := packWord(texmodeS, texmodeT, pow2w, pow2h)
	word3 := packWord(nolod, nolod, 0, 0)

	return Record{CmdID: cmd, Payload: []uint32{word0, word1, word2, word3}}, nil
}

func encodeSPVertex(args []string) (Record, error) {
	if len(args) != Arity(SPVertex) {
		return Record{}, fmt.Errorf("SPVertex: expected %d arguments, got %d", Arity(SPVertex), len(args))
	}
	offset := pointerOffset(args[0])
	count := byte(resolveArg(args[1]))
	word := packWord(byte(offset>>8), byte(offset), count, 0)
	return Record{CmdID: SPVertex, Payload: []uint32{word}}, nil
}

func encodeSP1Triangle(args []string) (Record, error) {
	if len(args) != Arity(SP1Triangle) {
		return Record{}, fmt.Errorf("SP1Triangle: expected %d arguments, got %d", Arity(SP1Triangle), len(args))
	}
	word := packWord(byte(resolveArg(args[0])), byte(resolveArg(args[1])), byte(resolveArg(args[2])), byte(resolveArg(args[3])))
	return Record{CmdID: SP1Triangle, Payload: []uint32{word}}, nil
}

func encodeSP2Triangles(args []string) (Record, error) {
	if len(args) != Arity(SP2Triangles) {
		return Record{}, fmt.Errorf("SP2Triangles: expected %d arguments, got %d", Arity(SP2Triangles), len(args))
	}
	w0 := packWord(byte(resolveArg(args[0])), byte(resolveArg(args[1])), byte(resolveArg(args[2])), byte(resolveArg(args[3])))
	w1 := packWord(byte(resolveArg(args[4])), byte(resolveArg(args[5])), byte(resolveArg(args[6])), byte(resolveArg(args[7])))
	return Record{CmdID: SP2Triangles, Payload: []uint32{w0, w1}}, nil
}

func encodeDPSetPrimColor(args []string) (Record, error) {
	if len(args) != Arity(DPSetPrimColor) {
		return Record{}, fmt.Errorf("DPSetPrimColor: expected %d arguments, got %d", Arity(DPSetPrimColor), len(args))
	}
	l := int16(resolveArg(args[0]))
	m := int16(resolveArg(args[1]))
	w0 := packWord(byte(uint16(l)>>8), byte(uint16(l)), byte(uint16(m)>>8), byte(uint16(m)))
	w1 := packWord(byte(resolveArg(args[2])), byte(resolveArg(args[3])), byte(resolveArg(args[4])), byte(resolveArg(args[5])))
	return Record{CmdID: DPSetPrimColor, Payload: []uint32{w0, w1}}, nil
}

// encodeDPSetCombineMode rewrites the command id to DPSetCombineLERP and
// packs the two combine-macro tables (8 bytes each) into 4 payload words,
// per §4.2.
func encodeDPSetCombineMode(args []string) (Record, error) {
	if len(args) != Arity(DPSetCombineMode) {
		return Record{}, fmt.Errorf("DPSetCombineMode: expected %d arguments, got %d", Arity(DPSetCombineMode), len(args))
	}
	b0, ok0 := ResolveCombineMacro(args[0])
	if !ok0 {
		b0 = [8]byte{}
	}
	b1, ok1 := ResolveCombineMacro(args[1])
	if !ok1 {
		b1 = [8]byte{}
	}
	var combined [16]byte
	copy(combined[0:8], b0[:])
	copy(combined[8:16], b1[:])

	payload := make([]uint32, 4)
	for i := 0; i < 4; i++ {
		payload[i] = binary.BigEndian.Uint32(combined[i*4 : i*4+4])
	}
	return Record{CmdID: DPSetCombineLERP, Payload: payload}, nil
}
