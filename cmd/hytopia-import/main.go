// hytopia-import converts Hytopia world maps into OBJ meshes, materials and
// entity placements.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/hytopia-importer/internal/config"
	"github.com/Faultbox/hytopia-importer/internal/logger"
	"github.com/Faultbox/hytopia-importer/internal/watch"
	"github.com/Faultbox/hytopia-importer/internal/worldgen"
	"github.com/Faultbox/hytopia-importer/pkg/hytopia"
)

func main() {
	var flags config.Flags
	global := flag.NewFlagSet("hytopia-import", flag.ExitOnError)
	global.Usage = printUsage
	flags.RegisterGlobal(global)
	global.Parse(os.Args[1:])

	if global.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	command := global.Arg(0)
	args := global.Args()[1:]

	switch command {
	case "import":
		os.Exit(cmdImport(&flags, args))
	case "clear":
		os.Exit(cmdClear(&flags, args))
	case "info":
		os.Exit(cmdInfo(args))
	case "watch":
		os.Exit(cmdWatch(&flags, args))
	case "genmap":
		os.Exit(cmdGenmap(args))
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`hytopia-import - Hytopia world map importer

Usage:
  hytopia-import [-config file] [-debug] <command> [options]

Commands:
  import -map <map.json> [options]   Import a region and write it to the output directory
  clear [-out dir]                   Remove previously imported files
  info -map <map.json>               Show map statistics
  watch -map <map.json> [options]    Import, then re-import whenever the map changes
  genmap -out <map.json>             Write a generated sample map

Import options:
  -textures dir   -models dir   -out dir
  -min x,y,z      -max x,y,z
  -no-blocks      -no-entities  -no-cull

Examples:
  hytopia-import import -map world.json -textures ./textures -min -16,0,-16 -max 16,32,16
  hytopia-import genmap -out sample.json -seed 7 -size 48
  hytopia-import clear -out ./hytopia-out`)
}

// setup loads the config and starts logging.
func setup(flags *config.Flags) (*config.Config, bool) {
	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		return nil, false
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		return nil, false
	}
	logger.Sugar.Debugf("Config: %+v", cfg)
	return cfg, true
}

func mapArg(fs *flag.FlagSet, mapPath string) string {
	if mapPath == "" && fs.NArg() > 0 {
		return fs.Arg(0)
	}
	return mapPath
}

func cmdImport(flags *config.Flags, args []string) int {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	mapPath := fs.String("map", "", "Map file")
	flags.RegisterImport(fs)
	fs.Parse(args)

	path := mapArg(fs, *mapPath)
	if path == "" {
		fmt.Fprintln(os.Stderr, "Usage: hytopia-import import -map <map.json> [options]")
		return 1
	}
	cfg, ok := setup(flags)
	if !ok {
		return 1
	}
	defer logger.Sync()

	res := runImport(cfg, path)
	fmt.Println(res.Line())
	return res.ExitCode()
}

func cmdClear(flags *config.Flags, args []string) int {
	fs := flag.NewFlagSet("clear", flag.ExitOnError)
	fs.StringVar(&flags.OutputDir, "out", "", "Output directory")
	fs.Parse(args)

	cfg, ok := setup(flags)
	if !ok {
		return 1
	}
	defer logger.Sync()

	n, err := runClear(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Printf("Removed %d imported files\n", n)
	return 0
}

func cmdInfo(args []string) int {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	mapPath := fs.String("map", "", "Map file")
	fs.Parse(args)

	path := mapArg(fs, *mapPath)
	if path == "" {
		fmt.Fprintln(os.Stderr, "Usage: hytopia-import info -map <map.json>")
		return 1
	}

	m, err := hytopia.LoadMap(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	s := m.Stats()

	fmt.Printf("Map:          %s\n", path)
	fmt.Printf("Block types:  %d (%d multi-texture)\n", s.BlockTypes, s.MultiTexture)
	fmt.Printf("Blocks:       %d\n", s.Blocks)
	fmt.Printf("Entities:     %d\n", s.Entities)
	fmt.Printf("Extent:       %v .. %v\n", s.Min, s.Max)
	if s.MalformedKeys > 0 {
		fmt.Printf("Malformed:    %d block keys\n", s.MalformedKeys)
	}
	if len(s.UnknownTypeIDs) > 0 {
		fmt.Printf("Unknown ids:  %v\n", s.UnknownTypeIDs)
	}
	fmt.Println()
	fmt.Println("Blocks by type:")

	reg := m.Registry()
	ids := make([]int, 0, len(s.BlocksPerType))
	for id := range s.BlocksPerType {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return s.BlocksPerType[ids[i]] > s.BlocksPerType[ids[j]]
	})
	for _, id := range ids {
		name := "(unknown)"
		if bt, ok := reg[id]; ok {
			name = bt.Name
		}
		fmt.Printf("  %4d %-20s %d\n", id, name, s.BlocksPerType[id])
	}
	return 0
}

func cmdWatch(flags *config.Flags, args []string) int {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	mapPath := fs.String("map", "", "Map file")
	flags.RegisterWatch(fs)
	fs.Parse(args)

	path := mapArg(fs, *mapPath)
	if path == "" {
		fmt.Fprintln(os.Stderr, "Usage: hytopia-import watch -map <map.json> [options]")
		return 1
	}
	cfg, ok := setup(flags)
	if !ok {
		return 1
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := newWatcher(cfg, path)
	fmt.Println(w.run().Line())

	err := watch.Watch(ctx, path, time.Duration(cfg.Watch.Debounce), func(context.Context) error {
		res := w.run()
		fmt.Println(res.Line())
		return res.Err()
	})
	if err != nil {
		logger.Error("watch failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func cmdGenmap(args []string) int {
	fs := flag.NewFlagSet("genmap", flag.ExitOnError)
	out := fs.String("out", "", "Output map file")
	seed := fs.Int64("seed", 1, "Noise seed")
	size := fs.Int("size", 32, "Width and depth in blocks")
	height := fs.Int("height", 12, "Maximum terrain height")
	trees := fs.Int("trees", 4, "Number of tree entities")
	fs.Parse(args)

	if *out == "" {
		fmt.Fprintln(os.Stderr, "Usage: hytopia-import genmap -out <map.json> [-seed n] [-size n]")
		return 1
	}

	opts := worldgen.DefaultOptions()
	opts.Seed = *seed
	opts.Width, opts.Depth = *size, *size
	opts.MaxHeight = *height
	opts.Trees = *trees

	m, err := worldgen.Generate(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	data, err := m.Marshal()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if err := os.WriteFile(*out, data, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Printf("Wrote %s (%d blocks, %d entities)\n", *out, len(m.Blocks), len(m.Entities))
	return 0
}
