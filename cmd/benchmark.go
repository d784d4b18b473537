package main

import (
	"context"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/dealscore/internal/benchmark"
	"github.com/sells-group/dealscore/internal/export"
	"github.com/sells-group/dealscore/internal/model"
	"github.com/sells-group/dealscore/internal/resilience"
	"github.com/sells-group/dealscore/internal/store"
	notionpkg "github.com/sells-group/dealscore/pkg/notion"
)

var (
	benchmarkInput   string
	benchmarkFormat  string
	benchmarkOutput  string
	benchmarkSave    bool
	benchmarkPublish bool
)

var benchmarkCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Benchmark fund modules against industry reference points",
	Long:  "Grades every module from the metric values in --input (YAML or JSON keyed by module), ranks the fund and derives insights. Modules missing from the input are graded at the industry median.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		format, err := export.ParseFormat(benchmarkFormat)
		if err != nil {
			return err
		}
		inputs, err := loadModuleInputs(benchmarkInput)
		if err != nil {
			return eris.Wrap(err, "benchmark")
		}
		bm, err := initBenchmarker()
		if err != nil {
			return err
		}

		opts := benchmarkOptions{benchmarker: bm, inputs: inputs, format: format}
		if benchmarkSave {
			st, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck
			opts.store = st
		}
		if benchmarkPublish {
			nc, err := newNotionClient()
			if err != nil {
				return err
			}
			opts.notion = nc
			opts.notionDB = cfg.Notion.BenchmarkDB
			opts.retry = resilience.FromConfig(cfg.Retry)
		}

		out, closeOut, err := openOutput(benchmarkOutput, format)
		if err != nil {
			return err
		}
		if err := runBenchmark(ctx, out, opts); err != nil {
			_ = closeOut()
			return err
		}
		return closeOut()
	},
}

type benchmarkOptions struct {
	benchmarker *benchmark.Benchmarker
	inputs      map[model.Module]benchmark.ModuleInput
	format      export.Format
	store       store.Store      // nil skips persistence
	notion      notionpkg.Client // nil skips publishing
	notionDB    string
	retry       resilience.Policy
}

func runBenchmark(ctx context.Context, w io.Writer, opts benchmarkOptions) error {
	ib, err := opts.benchmarker.GenerateComprehensiveBenchmarks(opts.inputs)
	if err != nil {
		return err
	}

	if opts.store != nil {
		snap, err := opts.store.SaveBenchmarks(ctx, ib)
		if err != nil {
			return eris.Wrap(err, "benchmark: save snapshot")
		}
		zap.L().Info("benchmark snapshot saved", zap.String("id", snap.ID))
	}

	if opts.notion != nil {
		res, err := resilience.DoVal(ctx, opts.retry, "notion.publish_benchmarks",
			func(ctx context.Context) (notionpkg.PublishResult, error) {
				return notionpkg.PublishModuleBenchmarks(ctx, opts.notion, opts.notionDB, ib)
			})
		if err != nil {
			return eris.Wrap(err, "benchmark: publish to notion")
		}
		zap.L().Info("benchmarks published to notion",
			zap.Int("created", res.Created),
			zap.Int("updated", res.Updated),
		)
	}

	return export.WriteBenchmarks(w, opts.format, export.BenchmarkReport{
		Benchmarks: ib,
		Insights:   opts.benchmarker.Insights(ib),
	})
}

func init() {
	benchmarkCmd.Flags().StringVar(&benchmarkInput, "input", "", "module metrics file (yaml or json)")
	benchmarkCmd.Flags().StringVar(&benchmarkFormat, "format", "table", "output format: table, json, csv or xlsx")
	benchmarkCmd.Flags().StringVar(&benchmarkOutput, "output", "", "output path (default stdout)")
	benchmarkCmd.Flags().BoolVar(&benchmarkSave, "save", false, "persist the benchmark snapshot to the store")
	benchmarkCmd.Flags().BoolVar(&benchmarkPublish, "publish-notion", false, "publish one page per module to the Notion benchmark database")
	_ = benchmarkCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(benchmarkCmd)
}
