// sceneconv is a CLI utility that converts 3D asset files into the
// scene-graph model and dumps the result as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/sceneimport/internal/config"
	"github.com/Faultbox/sceneimport/internal/logger"
	"github.com/Faultbox/sceneimport/pkg/gltfparser"
	"github.com/Faultbox/sceneimport/pkg/importer"
	"github.com/Faultbox/sceneimport/pkg/scene"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Options{
		Level:   cfg.Logging.Level,
		File:    cfg.Logging.LogFile,
		Console: true,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	command := args[0]
	rest := args[1:]

	switch command {
	case "convert":
		cmdConvert(cfg, rest)
	case "info":
		cmdInfo(rest)
	case "init-config":
		cmdInitConfig()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`sceneconv - 3D asset to scene-graph converter

Usage:
  sceneconv [options] <command> [files]

Commands:
  convert <asset> [side files...]  Convert an asset and dump the scene as JSON
  info <asset> [side files...]     Show a summary of the converted scene
  init-config                      Write a default config to the user config dir

Options:
  -o <path>      Write output to path instead of stdout
  -compact       Write compact JSON
  -debug         Enable debug logging
  -config <path> Use an explicit config file

Examples:
  sceneconv -o scene.json convert model.gltf buffer.bin
  sceneconv info model.glb`)
}

// load registers the given files and runs the conversion.
func load(paths []string) (*scene.Scene, error) {
	im := importer.New(gltfparser.New())

	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		// Registered under the base name so relative buffer URIs in the
		// asset resolve against it.
		im.RegisterFile(filepath.Base(p), data)
	}

	return im.Convert(context.Background())
}

func cmdConvert(cfg *config.Config, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: sceneconv convert <asset> [side files...]")
		os.Exit(1)
	}

	sc, err := load(args)
	if err != nil {
		logger.Fatal("conversion failed", zap.String("asset", args[0]), zap.Error(err))
	}

	var data []byte
	if cfg.Output.Pretty {
		data, err = json.MarshalIndent(sc, "", "  ")
	} else {
		data, err = json.Marshal(sc)
	}
	if err != nil {
		logger.Fatal("encoding scene failed", zap.Error(err))
	}

	if cfg.Output.Path == "" {
		fmt.Println(string(data))
		return
	}

	if err := os.WriteFile(cfg.Output.Path, data, 0644); err != nil {
		logger.Fatal("writing output failed", zap.String("path", cfg.Output.Path), zap.Error(err))
	}
	logger.Info("scene written",
		zap.String("path", cfg.Output.Path),
		zap.Int("bytes", len(data)))
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: sceneconv info <asset> [side files...]")
		os.Exit(1)
	}

	sc, err := load(args)
	if err != nil {
		logger.Fatal("conversion failed", zap.String("asset", args[0]), zap.Error(err))
	}

	fmt.Printf("Asset:      %s\n", args[0])
	fmt.Printf("Meshes:     %d\n", len(sc.Meshes))
	fmt.Printf("Materials:  %d\n", len(sc.Materials))
	fmt.Printf("Lights:     %d\n", len(sc.Lights))
	fmt.Printf("Cameras:    %d\n", len(sc.Cameras))
	fmt.Printf("Animations: %d\n", len(sc.Animations))
	fmt.Printf("Nodes:      %d\n", countNodes(sc.RootNode))

	var vertices, indices int
	for i := range sc.Meshes {
		vertices += len(sc.Meshes[i].Vertices)
		indices += len(sc.Meshes[i].Indices)
	}
	fmt.Printf("Vertices:   %d\n", vertices)
	fmt.Printf("Triangles:  %d\n", indices/3)
}

func cmdInitConfig() {
	cfg := config.Default()
	if err := cfg.Save(); err != nil {
		logger.Fatal("writing default config failed", zap.Error(err))
	}
	fmt.Printf("Wrote default config to %s\n", filepath.Join(config.ConfigDir(), "config.yaml"))
}

func countNodes(n *scene.Node) int {
	if n == nil {
		return 0
	}
	count := 1
	for _, c := range n.Children {
		count += countNodes(c)
	}
	return count
}
