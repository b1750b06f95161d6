package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/decker502/studyjam/pkg/config"
	"github.com/decker502/studyjam/pkg/ebitenhost"
	"github.com/decker502/studyjam/pkg/scenes"
	"github.com/decker502/studyjam/pkg/termhost"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open the showcase in a window",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadEffects()
		if err != nil {
			return err
		}
		sc, err := newShowcase(cfg, float64(viper.GetInt("width")), float64(viper.GetInt("height")))
		if err != nil {
			return err
		}
		defer sc.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		updates, stopWatch, err := watchPresets(ctx)
		if err != nil {
			return err
		}
		defer stopWatch()

		host := ebitenhost.New(sc, ebitenhost.Options{
			Title:   "studyjam",
			Logger:  logger.Named("ebiten"),
			Updates: updates,
		})
		return host.Run()
	},
}

var termCmd = &cobra.Command{
	Use:   "term",
	Short: "Run the showcase in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadEffects()
		if err != nil {
			return err
		}
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("failed to open terminal: %w", err)
		}
		if err := screen.Init(); err != nil {
			return fmt.Errorf("failed to initialize terminal: %w", err)
		}

		opts := termhost.Options{Logger: logger.Named("term")}
		w, h := termhost.ViewportSize(screen, opts)
		sc, err := newShowcase(cfg, w, h)
		if err != nil {
			screen.Fini()
			return err
		}
		defer sc.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		updates, stopWatch, err := watchPresets(ctx)
		if err != nil {
			screen.Fini()
			return err
		}
		defer stopWatch()

		opts.Updates = updates
		return termhost.New(screen, sc, opts).Run(ctx)
	},
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a scripted headless session and print sampled frames",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadEffects()
		if err != nil {
			return err
		}
		w, h := float64(viper.GetInt("width")), float64(viper.GetInt("height"))
		sc, err := newShowcase(cfg, w, h)
		if err != nil {
			return err
		}
		defer sc.Close()

		script := scenes.DefaultScript(w, h)
		if path, _ := cmd.Flags().GetString("script"); path != "" {
			if script, err = scenes.LoadScript(path); err != nil {
				return err
			}
		}
		if n, _ := cmd.Flags().GetInt("frames"); n > 0 {
			script.Frames = n
		}
		if n, _ := cmd.Flags().GetInt("sample-every"); n > 0 {
			script.SampleEvery = n
		}

		samples := scenes.Simulate(sc, script)
		format, _ := cmd.Flags().GetString("format")
		return writeSamples(cmd.OutOrStdout(), samples, format)
	},
}

func init() {
	simulateCmd.Flags().Int("frames", 0, "number of frames to simulate (0: from script)")
	simulateCmd.Flags().Int("sample-every", 0, "sample one frame out of N (0: from script)")
	simulateCmd.Flags().String("format", "table", "output format: table or yaml")
	simulateCmd.Flags().String("script", "", "YAML input script (default: built-in tour)")
}

// watchPresets --presets 指定文件时启动热重载，否则返回 nil 通道
func watchPresets(ctx context.Context) (<-chan *config.EffectsConfig, func(), error) {
	path := viper.GetString("presets")
	if path == "" {
		return nil, func() {}, nil
	}
	w, err := config.NewWatcher(path, logger.Named("watcher"))
	if err != nil {
		return nil, nil, err
	}
	if err := w.Start(ctx); err != nil {
		w.Stop()
		return nil, nil, err
	}
	return w.Updates(), w.Stop, nil
}

func writeSamples(out io.Writer, samples []scenes.Sample, format string) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(samples); err != nil {
			return fmt.Errorf("failed to encode samples: %w", err)
		}
		return enc.Close()
	case "table":
		_, err := fmt.Fprintln(out, samplesTable(samples))
		return err
	default:
		return fmt.Errorf("unknown format %q (want table or yaml)", format)
	}
}

func samplesTable(samples []scenes.Sample) string {
	header := lipgloss.NewStyle().Bold(true)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("frame", "time", "scroll", "region", "x", "y", "rot", "rotX", "rotY", "scale", "opacity", "progress").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return lipgloss.NewStyle()
		})

	f := func(v float64) string { return strconv.FormatFloat(v, 'f', 3, 64) }
	for _, s := range samples {
		for _, r := range s.Regions {
			t.Row(strconv.Itoa(s.Frame), s.At.String(), f(s.ScrollY), r.Name,
				f(r.X), f(r.Y), f(r.Rotate), f(r.RotateX), f(r.RotateY), f(r.Scale), f(r.Opacity), f(r.Progress))
		}
	}
	logger.Debug("rendered sample table", zap.Int("samples", len(samples)))
	return t.String()
}
