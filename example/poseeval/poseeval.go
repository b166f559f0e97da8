// Example poseeval evaluates predicted poses in a JSON scenes file against
// their ground truth and prints the resulting metrics.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/swdee/go-posemetrics/config"
	"github.com/swdee/go-posemetrics/evaluate"
	"github.com/swdee/go-posemetrics/metrics"
)

// evalOptions holds the flags of the eval command
type evalOptions struct {
	Config     string
	ScenesPath string
	Workers    int
	Quiet      bool
	CheckBoxes bool
}

var evalOpts evalOptions

var rootCmd = &cobra.Command{
	Use:   "poseeval",
	Short: "Keypoint pose estimation evaluation",
}

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Evaluate the predictions in a scenes file",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEval(cmd.Context(), evalOpts, os.Stdout)
	},
}

var presetsCmd = &cobra.Command{
	Use:   "presets [name]",
	Short: "List presets or the metric names a preset produces",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {

		if len(args) == 0 {
			for _, name := range config.PresetNames() {
				fmt.Println(name)
			}
			return nil
		}

		cfg, err := config.Preset(args[0])

		if err != nil {
			return err
		}

		names, err := config.MetricNames(cfg)

		if err != nil {
			return err
		}

		for _, name := range names {
			fmt.Println(name)
		}

		return nil
	},
}

func init() {
	evalCmd.Flags().StringVarP(&evalOpts.Config, "config", "c", config.PresetCamera, "Preset name or path to a JSON metric config")
	evalCmd.Flags().StringVarP(&evalOpts.ScenesPath, "scenes", "s", "", "Path to JSON scenes file")
	evalCmd.Flags().IntVarP(&evalOpts.Workers, "workers", "w", 1, "Number of parallel evaluation workers")
	evalCmd.Flags().BoolVarP(&evalOpts.Quiet, "quiet", "q", false, "Disable the progress bar")
	evalCmd.Flags().BoolVar(&evalOpts.CheckBoxes, "check-boxes", false, "Warn about visible ground truth keypoints outside their box")
	_ = evalCmd.MarkFlagRequired("scenes")

	rootCmd.AddCommand(evalCmd, presetsCmd)
}

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveConfig returns the named preset or loads the config file at path
func resolveConfig(nameOrPath string) (*config.MetricConfig, error) {

	if strings.HasSuffix(nameOrPath, ".json") {
		return config.LoadConfig(nameOrPath)
	}

	return config.Preset(nameOrPath)
}

// runEval evaluates the scenes file and writes one "name value" line per
// result to out
func runEval(ctx context.Context, opts evalOptions, out io.Writer) error {

	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := resolveConfig(opts.Config)

	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	matcherParams, err := cfg.MatcherParams()

	if err != nil {
		return err
	}

	scenes, err := loadScenes(opts.ScenesPath)

	if err != nil {
		return err
	}

	params := evaluate.Params{
		Workers:    opts.Workers,
		Matcher:    matcherParams,
		CheckBoxes: opts.CheckBoxes,
	}

	if !opts.Quiet {
		bar := progressbar.NewOptions(len(scenes),
			progressbar.OptionSetDescription("Evaluating scenes"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
		)
		defer bar.Finish()

		params.Progress = func(done, total int) {
			_ = bar.Set(done)
		}
	}

	create := func() (metrics.Metric, error) {
		return config.CreateCombinedMetric(cfg)
	}

	e, err := evaluate.NewEvaluator(create, params)

	if err != nil {
		return err
	}

	start := time.Now()
	report, err := e.Evaluate(ctx, scenes)

	if err != nil {
		return err
	}

	log.Printf("Evaluated %d scenes in %s\n", report.Scenes, time.Since(start).String())

	names := make([]string, 0, len(report.Results))
	for name := range report.Results {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Fprintf(out, "%s %.6f\n", name, report.Results[name])
	}

	return nil
}
