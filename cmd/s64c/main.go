// Command s64c compiles a Sausage64 (.s64) scene into a C display-list
// header, a compact binary asset, or an OpenGL-oriented C header.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/buu342/s64c/internal/cache"
	"github.com/buu342/s64c/internal/config"
	"github.com/buu342/s64c/internal/dlist"
	"github.com/buu342/s64c/internal/material"
	"github.com/buu342/s64c/internal/output"
	"github.com/buu342/s64c/internal/scene"
)

var cfg = config.Default()

var rootCmd = &cobra.Command{
	Use:   "s64c",
	Short: "Compile a Sausage64 scene into a display list, binary asset, or OpenGL header",
	Run: func(cmd *cobra.Command, args []string) {
		// -r toggles root fixup, which is on by default.
		if cmd.Flags().Changed("fix-root") {
			cfg.FixRoot = !config.Default().FixRoot
		}
		// Documented quirk (spec.md §9): the process always exits 0, even
		// after a fatal compile error.
		if err := run(cfg); err != nil {
			logrus.Error(err)
		}
	},
}

func init() {
	rootCmd.Flags().StringVarP(&cfg.InputFile, "file", "f", "", "input .s64 scene file (required)")
	rootCmd.Flags().StringVarP(&cfg.MaterialFile, "materials", "t", "", "material description file")
	rootCmd.Flags().BoolVarP(&cfg.TextOutput, "text", "s", false, "emit a C header instead of a binary asset")
	rootCmd.Flags().BoolVarP(&cfg.OpenGL, "opengl", "g", false, "emit the OpenGL-flavored C header")
	rootCmd.Flags().IntVarP(&cfg.CacheSize, "cache", "c", cfg.CacheSize, "vertex cache size (minimum 3)")
	rootCmd.Flags().BoolVarP(&cfg.ElideInitial, "elide-initial", "i", false, "elide the first material's state load")
	rootCmd.Flags().StringVarP(&cfg.ModelName, "name", "n", cfg.ModelName, "model symbol prefix")
	rootCmd.Flags().StringVarP(&cfg.OutputName, "out", "o", cfg.OutputName, "output basename")
	rootCmd.Flags().BoolVarP(&cfg.NoTwoTri, "no-fusion", "2", false, "disable two-triangle fusion")
	rootCmd.Flags().BoolVarP(&cfg.Quiet, "quiet", "q", false, "suppress progress logging")
	rootCmd.Flags().BoolVarP(&cfg.FixRoot, "fix-root", "r", cfg.FixRoot, "toggle root-pivot fixup (on by default)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra's own usage/flag-parsing errors (unknown flag, missing
		// argument) are fatal per spec.md §6, but the process still exits 0.
		logrus.Error(err)
	}
	os.Exit(0)
}

func run(cfg config.Config) error {
	if cfg.Quiet {
		logrus.SetLevel(logrus.ErrorLevel)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	logrus.Infof("reading scene %q", cfg.InputFile)
	f, err := os.Open(cfg.InputFile)
	if err != nil {
		return err
	}
	defer f.Close()

	sc, err := scene.Parse(f)
	if err != nil {
		return err
	}
	logrus.Infof("finished parsing: %d meshes, %d animations, %d materials", len(sc.Meshes), len(sc.Animations), len(sc.Materials))

	if cfg.MaterialFile != "" {
		logrus.Infof("reading materials %q", cfg.MaterialFile)
		mf, err := os.Open(cfg.MaterialFile)
		if err != nil {
			return err
		}
		loaded, err := material.Load(mf)
		mf.Close()
		if err != nil {
			return err
		}
		material.Merge(sc, loaded)
	}

	scene.Normalize(sc, cfg.FixRoot)

	logrus.Infof("partitioning %d meshes (cache size %d)", len(sc.Meshes), cfg.CacheSize)
	if err := cache.PartitionAll(sc, cfg.CacheSize); err != nil {
		return err
	}

	logrus.Info("synthesizing display lists")
	multiMesh := len(sc.Meshes) > 1
	synth := dlist.NewSynthesizer(cfg.ModelName, multiMesh, cfg.ElideInitial, cfg.NoTwoTri)
	mode := dlist.ModeBinary
	if cfg.TextOutput {
		mode = dlist.ModeText
	}
	cmdsByMesh := make([][]dlist.Command, len(sc.Meshes))
	for i, m := range sc.Meshes {
		cmdsByMesh[i] = synth.Synthesize(m, mode)
	}

	opt := output.TextOptions{ModelName: cfg.ModelName}

	switch {
	case cfg.OpenGL:
		outPath := cfg.OutputName + ".h"
		w, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer w.Close()
		if err := output.WriteOpenGL(w, sc, opt); err != nil {
			return err
		}
		logrus.Infof("wrote %s", outPath)
	case cfg.TextOutput:
		outPath := cfg.OutputName + ".h"
		w, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer w.Close()
		if err := output.WriteText(w, sc, opt, cmdsByMesh); err != nil {
			return err
		}
		logrus.Infof("wrote %s", outPath)
	default:
		outPath := cfg.OutputName + ".bin"
		w, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer w.Close()
		if err := output.WriteBinary(w, sc, output.FlavorUltra, cmdsByMesh); err != nil {
			return err
		}
		logrus.Infof("wrote %s", outPath)
	}

	return nil
}
