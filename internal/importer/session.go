package importer

import (
	"github.com/Faultbox/hytopia-importer/internal/assets"
	"github.com/Faultbox/hytopia-importer/internal/atlas"
	"github.com/Faultbox/hytopia-importer/internal/material"
)

// Session holds the caches shared by consecutive imports into the same host.
// It is not safe for concurrent imports.
type Session struct {
	Images  *assets.Manager
	Atlases *atlas.Cache

	textureDir string
	materials  *material.Resolver
}

// NewSession creates a session with empty caches.
func NewSession() *Session {
	return &Session{
		Images:  assets.NewManager(),
		Atlases: atlas.NewCache(),
	}
}

// Materials returns the material resolver for textureDir. Switching to another
// texture directory starts a fresh resolver and drops the atlases built from
// the previous one.
func (s *Session) Materials(textureDir string) *material.Resolver {
	if s.materials != nil && s.textureDir != textureDir {
		s.Atlases.Reset()
	}
	if s.materials == nil || s.textureDir != textureDir {
		s.materials = material.NewResolver(textureDir, s.Images, s.Atlases)
		s.textureDir = textureDir
	}
	return s.materials
}

// Reset empties every cache.
func (s *Session) Reset() {
	s.Images.Reset()
	s.Atlases.Reset()
	s.materials = nil
	s.textureDir = ""
}
