package importer

import (
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/Faultbox/hytopia-importer/internal/diag"
	"github.com/Faultbox/hytopia-importer/internal/scene"
)

// Status is the overall outcome of an import.
type Status int

const (
	StatusSuccess Status = iota
	StatusPartial        // something was replaced by a fallback
	StatusFailed         // nothing was imported
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusPartial:
		return "partial"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// Stats counts what an import produced.
type Stats struct {
	BlocksInBounds int
	Faces          int
	CulledFaces    int
	Meshes         int
	Fallbacks      int
	Entities       int
	Materials      int
	Atlases        int
}

// Summary reports the outcome of an import.
type Summary struct {
	ID       string
	Status   Status
	Err      error
	Warnings []diag.Warning
	Objects  []scene.NodeID
	Stats    Stats
	Duration time.Duration
}

func (s *Summary) finish(start time.Time) *Summary {
	s.Duration = time.Since(start)
	switch {
	case s.Err != nil:
		s.Status = StatusFailed
	case s.degraded():
		s.Status = StatusPartial
	default:
		s.Status = StatusSuccess
	}
	return s
}

func (s *Summary) degraded() bool {
	for _, w := range s.Warnings {
		if w.Kind.Degrading() {
			return true
		}
	}
	return false
}

// Message returns the one-line outcome shown to the operator.
func (s *Summary) Message() string {
	switch s.Status {
	case StatusFailed:
		return fmt.Sprintf("Import failed: %v", s.Err)
	case StatusPartial:
		return fmt.Sprintf("Imported %d objects (%d faces) with %d warnings; see log for details",
			len(s.Objects), s.Stats.Faces, len(s.Warnings))
	}
	if len(s.Warnings) > 0 {
		return fmt.Sprintf("Imported %d objects (%d faces), %d notes in log",
			len(s.Objects), s.Stats.Faces, len(s.Warnings))
	}
	return fmt.Sprintf("Imported %d objects (%d faces)", len(s.Objects), s.Stats.Faces)
}

// Error combines the hard failure, if any, with every warning.
func (s *Summary) Error() error {
	return multierr.Append(s.Err, diag.Combine(s.Warnings))
}
