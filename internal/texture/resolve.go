package texture

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
)

// Extensions are tried in order when a reference does not name an existing file.
var Extensions = []string{".png", ".jpg", ".jpeg", ".bmp", ".tga"}

// Resolver locates texture files referenced by block types under a base directory.
type Resolver struct {
	Base string
}

// NewResolver creates a resolver rooted at base. A leading ~ is expanded.
func NewResolver(base string) Resolver {
	if expanded, err := homedir.Expand(base); err == nil {
		base = expanded
	}
	return Resolver{Base: base}
}

// candidates returns the locations a reference may live at: as written, by file
// name alone, and with its first directory level removed.
func (r Resolver) candidates(ref string) []string {
	ref = filepath.FromSlash(strings.ReplaceAll(ref, `\`, "/"))
	paths := []string{
		filepath.Join(r.Base, ref),
		filepath.Join(r.Base, filepath.Base(ref)),
	}
	if parts := strings.SplitN(filepath.ToSlash(ref), "/", 2); len(parts) == 2 {
		paths = append(paths, filepath.Join(r.Base, filepath.FromSlash(parts[1])))
	}
	return paths
}

// Resolve returns the path of the file a texture reference points at.
// Directories never match. A missing texture is reported with ok=false, not an error.
func (r Resolver) Resolve(ref string) (path string, ok bool) {
	if r.Base == "" || ref == "" {
		return "", false
	}
	for _, p := range r.candidates(ref) {
		if isFile(p) {
			return p, true
		}
		ext := filepath.Ext(p)
		stem := strings.TrimSuffix(p, ext)
		for _, alt := range Extensions {
			if alt == ext {
				continue
			}
			if isFile(stem + alt) {
				return stem + alt, true
			}
		}
	}
	return "", false
}

// ResolveDir returns the directory holding the per-face images of a multi-texture block.
func (r Resolver) ResolveDir(ref string) (string, bool) {
	if r.Base == "" || ref == "" {
		return "", false
	}
	for _, p := range r.candidates(ref) {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			return p, true
		}
	}
	return "", false
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
