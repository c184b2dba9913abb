package scene

// Normalize runs the post-parse pass described in spec.md §4.5:
//  1. reorder each keyframe's transforms into mesh-declaration order,
//  2. rebase each animation's keyframe timestamps so the first is 0,
//  3. optionally (fixRoot) subtract each mesh's root pivot from its vertex
//     positions and re-add it to every transform's translation.
func Normalize(s *Scene, fixRoot bool) {
	reorderTransforms(s)
	rebaseTimestamps(s)
	if fixRoot {
		fixRoots(s)
	}
}

// reorderTransforms sorts each keyframe's transform list to match the
// scene's mesh declaration order. Transforms for meshes absent from a given
// keyframe are simply missing from the result (there is no tail of
// "absent" entries to preserve — a transform only exists if it was parsed).
func reorderTransforms(s *Scene) {
	for _, anim := range s.Animations {
		for ki := range anim.Keyframes {
			kf := &anim.Keyframes[ki]
			ordered := make([]Transform, 0, len(kf.Transforms))
			for _, mesh := range s.Meshes {
				for _, t := range kf.Transforms {
					if t.Mesh == mesh {
						ordered = append(ordered, t)
						break
					}
				}
			}
			kf.Transforms = ordered
		}
	}
}

// rebaseTimestamps subtracts the first keyframe's timestamp from every
// keyframe in that animation, UNLESS the first keyframe is already at 0 — in
// which case no rebasing happens at all, even if a later keyframe is
// negative relative to some other frame. This mirrors a documented quirk in
// the original implementation (spec.md §9) and is preserved deliberately.
func rebaseTimestamps(s *Scene) {
	for _, anim := range s.Animations {
		if len(anim.Keyframes) == 0 {
			continue
		}
		if anim.Keyframes[0].Timestamp == 0 {
			continue
		}
		first := anim.Keyframes[0].Timestamp
		for ki := range anim.Keyframes {
			anim.Keyframes[ki].Timestamp -= first
		}
	}
}

func fixRoots(s *Scene) {
	for _, mesh := range s.Meshes {
		for vi := range mesh.Vertices {
			mesh.Vertices[vi].Pos = mesh.Vertices[vi].Pos.Sub(mesh.Root)
		}
	}
	for _, anim := range s.Animations {
		for ki := range anim.Keyframes {
			kf := &anim.Keyframes[ki]
			for ti := range kf.Transforms {
				t := &kf.Transforms[ti]
				t.Translation = t.Translation.Add(t.Mesh.Root)
			}
		}
	}
}
