package download

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/imgurgrab/imgurgrab/internal/model"
)

// Target pairs one descriptor with its unique path under the output root.
type Target struct {
	// Descriptor is the image to download.
	Descriptor model.ImageDescriptor
	// Path is the planned target path for the image bytes.
	Path string
}

// Layout is the collision-free mapping from descriptors to target paths.
type Layout struct {
	// Targets holds one planned path per descriptor, in descriptor order.
	Targets []Target
	// Dirs is the sorted set of directories that must exist before any
	// write starts.
	Dirs []string
}

// PlanLayout assigns every descriptor a unique path under root. Images from
// a multi-image gallery each get their own subdirectory named by the
// zero-padded run ordinal; a gallery's sole image is written directly under
// root. When two descriptors derive the same filename in the same
// directory, the later one is qualified with its ordinal.
func PlanLayout(root string, descriptors []model.ImageDescriptor) Layout {
	targets := make([]Target, 0, len(descriptors))
	used := make(map[string]struct{}, len(descriptors))
	dirSet := map[string]struct{}{root: {}}

	for _, d := range descriptors {
		dir := root
		if d.GallerySize > 1 {
			dir = filepath.Join(root, fmt.Sprintf("%04d", d.Ordinal))
			dirSet[dir] = struct{}{}
		}

		name := d.Filename
		path := filepath.Join(dir, name)
		for {
			if _, taken := used[path]; !taken {
				break
			}
			name = qualifyFilename(name, d.Ordinal)
			path = filepath.Join(dir, name)
		}
		used[path] = struct{}{}

		targets = append(targets, Target{Descriptor: d, Path: path})
	}

	dirs := make([]string, 0, len(dirSet))
	for dir := range dirSet {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	return Layout{Targets: targets, Dirs: dirs}
}

// qualifyFilename disambiguates a colliding filename by inserting the
// descriptor's ordinal before the extension.
func qualifyFilename(name string, ordinal int) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	return fmt.Sprintf("%s-%04d%s", base, ordinal, ext)
}
