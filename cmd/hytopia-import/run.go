package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/hytopia-importer/internal/atlas"
	"github.com/Faultbox/hytopia-importer/internal/config"
	"github.com/Faultbox/hytopia-importer/internal/export"
	"github.com/Faultbox/hytopia-importer/internal/importer"
	"github.com/Faultbox/hytopia-importer/internal/library"
	"github.com/Faultbox/hytopia-importer/internal/logger"
	"github.com/Faultbox/hytopia-importer/internal/scene"
	"github.com/Faultbox/hytopia-importer/pkg/hytopia"
)

// importedPrefixes matches every file name an import can write.
var importedPrefixes = []string{
	importer.ObjectPrefix,
	importer.EntityPrefix,
	hytopia.NamePrefix,
	atlas.ImagePrefix,
	export.MaterialLibrary,
	export.EntityList,
}

// result is the outcome of one import run, export included.
type result struct {
	summary *importer.Summary
	files   int
	err     error // export or library failure
}

// Line returns the single line printed for the run.
func (r result) Line() string {
	if r.err != nil {
		return fmt.Sprintf("Import failed: %v", r.err)
	}
	return r.summary.Message()
}

// ExitCode is 1 for failed runs.
func (r result) ExitCode() int {
	if r.Err() != nil {
		return 1
	}
	return 0
}

// Err returns the hard failure of the run, ignoring warnings.
func (r result) Err() error {
	if r.err != nil {
		return r.err
	}
	return r.summary.Err
}

// runImport imports path into a fresh scene and writes it out.
func runImport(cfg *config.Config, path string) result {
	sc := scene.New()
	sum := importer.New(sc).Import(importer.NewSession(), cfg.Import.Options(path))
	return publish(cfg, sc, sum, false)
}

// publish exports the scene of a successful or partial import and records the
// written files. With replace set, files of earlier imports are removed first.
func publish(cfg *config.Config, sc *scene.Scene, sum *importer.Summary, replace bool) result {
	res := result{summary: sum}
	if sum.Status == importer.StatusFailed {
		return res
	}

	lib, err := library.Open(cfg.LibraryPath())
	if err != nil {
		res.err = err
		return res
	}
	defer lib.Close()

	if replace {
		if _, err := lib.Clear(importedPrefixes...); err != nil {
			res.err = err
			return res
		}
	}

	arts, err := export.New(cfg.Import.OutputDir).Write(sc)
	if rerr := lib.Record(sum.ID, arts); rerr != nil && err == nil {
		err = rerr
	}
	res.files = len(arts)
	res.err = err

	logger.Info("import published",
		zap.String("import_id", sum.ID),
		zap.String("out", cfg.Import.OutputDir),
		zap.Int("files", len(arts)))
	return res
}

// runClear removes every previously imported file recorded in the library.
func runClear(cfg *config.Config) (int, error) {
	lib, err := library.Open(cfg.LibraryPath())
	if err != nil {
		return 0, err
	}
	defer lib.Close()
	return lib.Clear(importedPrefixes...)
}

// watcher re-imports into one long-lived scene, clearing the previous import
// first, the way an editor session would.
type watcher struct {
	cfg  *config.Config
	path string
	sc   *scene.Scene
	sess *importer.Session
	im   *importer.Importer
}

func newWatcher(cfg *config.Config, path string) *watcher {
	sc := scene.New()
	return &watcher{cfg: cfg, path: path, sc: sc, sess: importer.NewSession(), im: importer.New(sc)}
}

func (w *watcher) run() result {
	w.im.Clear(w.sess)
	sum := w.im.Import(w.sess, w.cfg.Import.Options(w.path))
	return publish(w.cfg, w.sc, sum, true)
}
