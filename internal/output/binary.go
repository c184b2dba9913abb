package output

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/buu342/s64c/internal/dlist"
	"github.com/buu342/s64c/internal/microcode"
	"github.com/buu342/s64c/internal/scene"
)

const binaryMagic uint16 = 0x5364

// BinaryFlavor selects the vertex record layout (§6): libultra's fixed-point
// format for the N64 GPU, or the float layout used by the OpenGL build.
type BinaryFlavor int

const (
	FlavorUltra BinaryFlavor = iota
	FlavorOpenGL
)

// WriteBinary writes sc as the compact binary asset described in spec.md
// §6: a 14-byte header, per-mesh TOC, mesh/vertex records and a
// display-list blob, in that order. cmdsByMesh is parallel to sc.Meshes.
func WriteBinary(w io.Writer, sc *scene.Scene, flavor BinaryFlavor, cmdsByMesh [][]dlist.Command) error {
	meshBlobs := make([][]byte, len(sc.Meshes))
	vertBlobs := make([][]byte, len(sc.Meshes))
	dlBlobs := make([][]byte, len(sc.Meshes))
	dlSlots := make([]int, len(sc.Meshes))

	for i, m := range sc.Meshes {
		meshBlobs[i] = encodeMeshData(sc, m)

		vb, err := encodeVertexData(m, flavor)
		if err != nil {
			return err
		}
		vertBlobs[i] = vb

		db, slots, err := encodeDisplayList(cmdsByMesh[i], sc.Materials)
		if err != nil {
			return err
		}
		dlBlobs[i] = db
		dlSlots[i] = slots
	}

	// spec.md's field list (magic u16, mesh_count u16, anim_count u16,
	// offset_meshes u32, offset_anims u32) sums to 14 tightly-packed bytes;
	// the "12 bytes" figure in the prose doesn't match its own field list,
	// so the field list (not the byte count) is treated as authoritative.
	const headerSize = 14
	tocEntrySize := 7 * 4
	tocSize := tocEntrySize * len(sc.Meshes)
	offsetMeshes := uint32(headerSize + tocSize)

	var body []byte
	meshOffsets := make([]uint32, len(sc.Meshes))
	vertOffsets := make([]uint32, len(sc.Meshes))
	dlOffsets := make([]uint32, len(sc.Meshes))
	cursor := offsetMeshes
	for i := range sc.Meshes {
		meshOffsets[i] = cursor
		body = append(body, meshBlobs[i]...)
		cursor += uint32(len(meshBlobs[i]))

		vertOffsets[i] = cursor
		body = append(body, vertBlobs[i]...)
		cursor += uint32(len(vertBlobs[i]))

		dlOffsets[i] = cursor
		body = append(body, dlBlobs[i]...)
		cursor += uint32(len(dlBlobs[i]))
	}
	offsetAnims := cursor // no dedicated animation table byte-format specified beyond the text form; kept as a trailing marker offset

	bw := bufio.NewWriter(w)

	if _, err := bw.Write(packHeader(len(sc.Meshes), len(sc.Animations), offsetMeshes, offsetAnims)); err != nil {
		return err
	}

	for i := range sc.Meshes {
		toc := make([]byte, tocEntrySize)
		binary.BigEndian.PutUint32(toc[0:4], meshOffsets[i])
		binary.BigEndian.PutUint32(toc[4:8], uint32(len(meshBlobs[i])))
		binary.BigEndian.PutUint32(toc[8:12], vertOffsets[i])
		binary.BigEndian.PutUint32(toc[12:16], uint32(len(vertBlobs[i])))
		binary.BigEndian.PutUint32(toc[16:20], dlOffsets[i])
		binary.BigEndian.PutUint32(toc[20:24], uint32(len(dlBlobs[i])))
		binary.BigEndian.PutUint32(toc[24:28], uint32(dlSlots[i]))
		if _, err := bw.Write(toc); err != nil {
			return err
		}
	}

	if _, err := bw.Write(body); err != nil {
		return err
	}

	return bw.Flush()
}

// packHeader lays out the header as magic(u16), mesh_count(u16),
// anim_count(u16), offset_meshes(u32), offset_anims(u32), per spec.md §6.
func packHeader(meshCount, animCount int, offsetMeshes, offsetAnims uint32) []byte {
	buf := make([]byte, 14)
	binary.BigEndian.PutUint16(buf[0:2], binaryMagic)
	binary.BigEndian.PutUint16(buf[2:4], uint16(meshCount))
	binary.BigEndian.PutUint16(buf[4:6], uint16(animCount))
	binary.BigEndian.PutUint32(buf[6:10], offsetMeshes)
	binary.BigEndian.PutUint32(buf[10:14], offsetAnims)
	return buf
}

// encodeMeshData writes a mesh data record: parent(i16,-1 if none),
// is_billboard(u8), NUL-terminated name.
func encodeMeshData(sc *scene.Scene, m *scene.Mesh) []byte {
	parent := int16(-1)
	if m.Parent != "" {
		if idx := sc.MeshIndex(m.Parent); idx >= 0 {
			parent = int16(idx)
		}
	}
	billboard := byte(0)
	if m.HasProperty("Billboard") {
		billboard = 1
	}

	buf := make([]byte, 2+1+len(m.Name)+1)
	binary.BigEndian.PutUint16(buf[0:2], uint16(parent))
	buf[2] = billboard
	copy(buf[3:], m.Name)
	return buf
}

// encodeVertexData writes every vertex in cache-group order, in the
// flavor's record layout.
func encodeVertexData(m *scene.Mesh, flavor BinaryFlavor) ([]byte, error) {
	var buf []byte
	for _, group := range m.VertCaches {
		for localIdx, globalIdx := range group.Verts {
			v := m.Vertices[globalIdx]
			mat := findMaterialFromVert(group, localIdx)
			if mat == nil {
				return nil, fmt.Errorf("mesh %q: inconsistent face/vertex texture information", m.Name)
			}

			switch flavor {
			case FlavorUltra:
				buf = append(buf, encodeUltraVert(v, mat)...)
			case FlavorOpenGL:
				buf = append(buf, encodeDragonVert(v)...)
			}
		}
	}
	return buf, nil
}

// encodeUltraVert packs pos[3]i16, pad u16, tex[2]s10.5 i16,
// color_or_normal[4]u8.
func encodeUltraVert(v scene.Vertex, mat *scene.Material) []byte {
	buf := make([]byte, 2*3+2+2*2+4)
	binary.BigEndian.PutUint16(buf[0:2], uint16(int16(round(v.Pos.X))))
	binary.BigEndian.PutUint16(buf[2:4], uint16(int16(round(v.Pos.Y))))
	binary.BigEndian.PutUint16(buf[4:6], uint16(int16(round(v.Pos.Z))))
	// buf[6:8] pad, left zero

	var texW, texH float32
	if mat.Type == scene.MaterialTexture {
		texW, texH = float32(mat.Texture.Width), float32(mat.Texture.Height)
	}
	binary.BigEndian.PutUint16(buf[8:10], uint16(int16(floatToS10p5(v.UV.X*texW))))
	binary.BigEndian.PutUint16(buf[10:12], uint16(int16(floatToS10p5(v.UV.Y*texH))))

	var normOrCol scene.Vector3
	if mat.Type == scene.MaterialTexture || mat.Type == scene.MaterialPrimColor {
		if mat.HasGeoFlag("G_LIGHTING") {
			normOrCol = v.Normal.Scale(127)
		} else {
			normOrCol = v.Color.Scale(255)
		}
	}
	buf[12] = byte(round(normOrCol.X))
	buf[13] = byte(round(normOrCol.Y))
	buf[14] = byte(round(normOrCol.Z))
	buf[15] = 255
	return buf
}

// encodeDragonVert packs pos[3]f32, tex[2]f32, normal[3]f32, color[3]f32.
func encodeDragonVert(v scene.Vertex) []byte {
	buf := make([]byte, 4*11)
	fields := []float32{
		v.Pos.X, v.Pos.Y, v.Pos.Z,
		v.UV.X, v.UV.Y,
		v.Normal.X, v.Normal.Y, v.Normal.Z,
		v.Color.X, v.Color.Y, v.Color.Z,
	}
	for i, f := range fields {
		binary.BigEndian.PutUint32(buf[i*4:i*4+4], math.Float32bits(f))
	}
	return buf
}

// encodeDisplayList encodes cmds into a sequence of (cmd_id, payload...)
// records terminated by an SPEndDisplayList record, returning the blob and
// the number of records ("slots") written.
func encodeDisplayList(cmds []dlist.Command, materials []*scene.Material) ([]byte, int, error) {
	var buf []byte
	slots := 0
	for _, c := range cmds {
		if c.Separator {
			continue
		}
		rec, err := microcode.Encode(c.Kind, c.Args, materials)
		if err != nil {
			return nil, 0, err
		}
		buf = append(buf, rec.Bytes()...)
		slots++
	}
	return buf, slots, nil
}
