// Package diag carries non-fatal import diagnostics between pipeline stages.
//
// Fallible steps return their value together with the warnings they produced;
// the importer aggregates them into the final summary.
package diag

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Kind classifies a warning.
type Kind int

const (
	MalformedCoord Kind = iota
	LargeVolume
	DegenerateFace
	GeometryFallback
	MissingTexture
	MissingAtlasFace
	UnknownBlockType
	EntitySkipped
	MissingDirectory
)

var kindNames = [...]string{
	MalformedCoord:   "malformed-coord",
	LargeVolume:      "large-volume",
	DegenerateFace:   "degenerate-face",
	GeometryFallback: "geometry-fallback",
	MissingTexture:   "missing-texture",
	MissingAtlasFace: "missing-atlas-face",
	UnknownBlockType: "unknown-block-type",
	EntitySkipped:    "entity-skipped",
	MissingDirectory: "missing-directory",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Degrading reports whether the warning means a unit of output was replaced
// by a fallback, as opposed to a single input record being dropped.
func (k Kind) Degrading() bool {
	switch k {
	case GeometryFallback, MissingTexture, MissingAtlasFace, EntitySkipped, UnknownBlockType:
		return true
	}
	return false
}

// Warning is one diagnostic produced during an import.
type Warning struct {
	Kind    Kind
	Subject string
	Err     error
}

// New creates a warning.
func New(kind Kind, subject string, err error) Warning {
	return Warning{Kind: kind, Subject: subject, Err: err}
}

// Newf creates a warning with a formatted cause.
func Newf(kind Kind, subject, format string, args ...any) Warning {
	return Warning{Kind: kind, Subject: subject, Err: fmt.Errorf(format, args...)}
}

func (w Warning) Error() string {
	if w.Err == nil {
		return fmt.Sprintf("%s: %s", w.Kind, w.Subject)
	}
	return fmt.Sprintf("%s: %s: %v", w.Kind, w.Subject, w.Err)
}

// Fields returns zap fields describing the warning.
func (w Warning) Fields() []zap.Field {
	return []zap.Field{
		zap.Stringer("kind", w.Kind),
		zap.String("subject", w.Subject),
		zap.Error(w.Err),
	}
}

// Combine merges warnings into a single error, or nil when there are none.
func Combine(warnings []Warning) error {
	var err error
	for _, w := range warnings {
		err = multierr.Append(err, w)
	}
	return err
}

// Count returns the number of warnings of the given kind.
func Count(warnings []Warning, kind Kind) int {
	n := 0
	for _, w := range warnings {
		if w.Kind == kind {
			n++
		}
	}
	return n
}
