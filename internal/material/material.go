// Package material loads the optional material description file (-t) and
// merges it into a scene's material table.
package material

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/buu342/s64c/internal/scene"
)

// fileEntry mirrors one material record as it appears in the YAML material
// file. Field names follow spec.md §3's Material fields.
type fileEntry struct {
	Name         string   `yaml:"name"`
	Type         string   `yaml:"type"` // "texture", "primcol", "omit"
	Cycle        string   `yaml:"cycle"`
	RenderMode1  string   `yaml:"render_mode_1"`
	RenderMode2  string   `yaml:"render_mode_2"`
	CombineMode1 string   `yaml:"combine_mode_1"`
	CombineMode2 string   `yaml:"combine_mode_2"`
	TexFilter    string   `yaml:"tex_filter"`
	GeoFlags     []string `yaml:"geo_flags"`
	DontLoad     bool     `yaml:"dontload"`

	Width    int    `yaml:"width"`
	Height   int    `yaml:"height"`
	ColType  string `yaml:"coltype"`
	ColSize  string `yaml:"colsize"`
	TexModeS string `yaml:"texmode_s"`
	TexModeT string `yaml:"texmode_t"`

	R uint8 `yaml:"r"`
	G uint8 `yaml:"g"`
	B uint8 `yaml:"b"`
}

type fileFormat struct {
	Materials []fileEntry `yaml:"materials"`
}

// Load parses the material file from r and returns the materials it
// describes, in file order.
func Load(r io.Reader) ([]*scene.Material, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading material file: %w", err)
	}

	var ff fileFormat
	if err := yaml.Unmarshal(data, &ff); err != nil {
		return nil, fmt.Errorf("parsing material file: %w", err)
	}

	out := make([]*scene.Material, 0, len(ff.Materials))
	for _, e := range ff.Materials {
		if len(e.GeoFlags) > scene.MaxGeoFlags {
			return nil, fmt.Errorf("material %q: too many geo_flags (max %d)", e.Name, scene.MaxGeoFlags)
		}
		m := &scene.Material{
			Name:         e.Name,
			Cycle:        e.Cycle,
			RenderMode1:  e.RenderMode1,
			RenderMode2:  e.RenderMode2,
			CombineMode1: e.CombineMode1,
			CombineMode2: e.CombineMode2,
			TexFilter:    e.TexFilter,
			GeoFlags:     append([]string(nil), e.GeoFlags...),
			DontLoad:     e.DontLoad,
		}
		switch e.Type {
		case "primcol":
			m.Type = scene.MaterialPrimColor
			m.PrimColor = scene.PrimColorData{R: e.R, G: e.G, B: e.B}
		case "omit":
			m.Type = scene.MaterialOmit
		default:
			m.Type = scene.MaterialTexture
			m.Texture = scene.TextureData{
				Width: e.Width, Height: e.Height,
				ColType: e.ColType, ColSize: e.ColSize,
				TexModeS: e.TexModeS, TexModeT: e.TexModeT,
			}
		}
		out = append(out, m)
	}
	return out, nil
}

// Merge appends each loaded material into sc's table under its own name,
// unless a material (or auto-created stub) of the same name already exists,
// in which case the loaded definition replaces the stub's fields in place
// (so face references created before the material file was applied keep
// pointing at a live, now fully-described material).
func Merge(sc *scene.Scene, loaded []*scene.Material) {
	for _, m := range loaded {
		if existing := sc.FindMaterial(m.Name); existing != nil {
			*existing = *m
			continue
		}
		sc.Materials = append(sc.Materials, m)
	}
}
