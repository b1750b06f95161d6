// studyjam 交互驱动的动效引擎展示程序
//
//	studyjam run                 ebiten 窗口
//	studyjam term                终端
//	studyjam simulate --frames 600 --format yaml
//
// 所有全局参数也可以通过 STUDYJAM_ 前缀的环境变量或 ./studyjam.yaml 设置。
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/decker502/studyjam/pkg/config"
	"github.com/decker502/studyjam/pkg/embedded"
	"github.com/decker502/studyjam/pkg/scenes"
)

var logger = zap.NewNop()

var rootCmd = &cobra.Command{
	Use:   "studyjam",
	Short: "Interaction-driven transform engine showcase",
	Long: `studyjam drives a page of magnetic cards, tilt cards, scroll-linked
progress bars and particle effects from pointer and scroll input.

Presets are read from the built-in effects file unless --presets points
at a YAML file, in which case edits to that file are hot reloaded.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		embedded.Init(dataFS)

		zc := zap.NewProductionConfig()
		if viper.GetBool("verbose") {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		l, err := zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("presets", "", "effects YAML file (default: built-in presets)")
	flags.Int64("seed", 0, "random seed for particles (0: time based)")
	flags.BoolP("verbose", "v", false, "enable debug logging")
	flags.Int("width", 1024, "viewport width in pixels")
	flags.Int("height", 720, "viewport height in pixels")

	cobra.OnInitialize(initViper)
	if err := viper.BindPFlags(flags); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(runCmd, termCmd, simulateCmd)
}

// initViper 环境变量和可选的配置文件，优先级低于命令行参数
func initViper() {
	viper.SetEnvPrefix("STUDYJAM")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetConfigName("studyjam")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
	}
}

// loadEffects --presets 指定的文件，未指定时使用内置预设
func loadEffects() (*config.EffectsConfig, error) {
	path := viper.GetString("presets")
	if path == "" {
		return config.DefaultEffects()
	}
	return config.LoadEffects(path)
}

func newShowcase(cfg *config.EffectsConfig, width, height float64) (*scenes.Showcase, error) {
	return scenes.NewShowcase(cfg, scenes.Options{
		Width:  width,
		Height: height,
		Seed:   viper.GetInt64("seed"),
		Logger: logger.Named("showcase"),
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
