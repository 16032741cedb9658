// 指示: miu200521358
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/miu200521358/mu_fkrig/pkg/adapter/io_model/gltf"
	"github.com/miu200521358/mu_fkrig/pkg/adapter/io_motion/clipjson"
	"github.com/miu200521358/mu_fkrig/pkg/adapter/mpresenter/messages"
	"github.com/miu200521358/mu_fkrig/pkg/domain/channel"
	"github.com/miu200521358/mu_fkrig/pkg/domain/fkrig"
	"github.com/miu200521358/mu_fkrig/pkg/infra/base/mlogging"
	"github.com/miu200521358/mu_fkrig/pkg/shared/base/logging"
	"github.com/miu200521358/mu_fkrig/pkg/usecase/minteractor"
	"golang.org/x/text/message"
)

// options はCLI引数を保持する。
type options struct {
	rigPath       string
	clipPath      string
	outputPath    string
	start         int
	interval      int
	interpolation channel.Interpolation
	applyMode     fkrig.ApplyMode
	reduce        bool
	tolerance     float64
	resetPose     bool
	lang          string
	verbose       bool
}

// main はクリップをスケルトンのコントロールへベイクし、トラックを保存する。
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run はCLI処理全体を実行する。
func run(ctx context.Context, args []string, out io.Writer, errOut io.Writer) error {
	opts, err := parseOptions(args, errOut)
	if err != nil {
		return err
	}
	printer := messages.NewPrinter(opts.lang)

	logger := mlogging.NewLogger(errOut)
	if opts.verbose {
		logger.SetLevel(logging.LOG_LEVEL_DEBUG)
	}
	logging.SetDefaultLogger(logger)

	gltfRepository := gltf.NewGltfRepository()
	gltfRepository.SetLoadProgressReporter(func(event gltf.LoadProgressEvent) {
		logger.Debug("スケルトン読込進捗: type=%s nodes=%d bones=%d curves=%d", event.Type, event.NodeCount, event.BoneCount, event.CurveCount)
	})
	usecase := minteractor.NewFkRigUsecase(minteractor.FkRigUsecaseDeps{
		SkeletonReader: gltfRepository,
		ClipReader:     clipjson.NewClipJsonRepository(),
		TrackWriter:    clipjson.NewTrackJsonRepository(),
	})

	result, err := usecase.BakeClip(ctx, minteractor.BakeClipRequest{
		SkeletonPath: opts.rigPath,
		ClipPath:     opts.clipPath,
		OutputPath:   opts.outputPath,
		ApplyMode:    opts.applyMode,
		Settings: minteractor.BakeSettings{
			Start:         channel.Frame(opts.start),
			Interval:      opts.interval,
			Interpolation: opts.interpolation,
			Reduce:        opts.reduce,
			Tolerance:     opts.tolerance,
			ResetPose:     opts.resetPose,
		},
		ProgressReporter: &cliProgressReporter{out: out, printer: printer},
	})
	if result != nil && result.Bake != nil {
		for _, id := range result.Bake.Warnings {
			printer.Fprintln(out, printer.Sprintf(messages.MessageWarning, id))
		}
	}
	if err != nil {
		if errors.Is(err, minteractor.ErrBakeCancelled) && result != nil && result.Bake != nil {
			return errors.New(printer.Sprintf(messages.MessageBakeCancelled, result.Bake.Frames))
		}
		return errors.New(printer.Sprintf(messages.MessageBakeFailed, err))
	}
	printer.Fprintln(out, printer.Sprintf(messages.LogTrackSaved, result.OutputPath))
	return nil
}

// parseOptions はCLI引数を解析する。
func parseOptions(args []string, errOut io.Writer) (options, error) {
	fs := flag.NewFlagSet("mu_fkrig", flag.ContinueOnError)
	fs.SetOutput(errOut)

	rig := fs.String("rig", "", "スケルトンファイルパス(.glb/.gltf/.vrm)")
	clip := fs.String("clip", "", "クリップファイルパス(.json)")
	out := fs.String("out", "", "出力トラックファイルパス(.json)")
	start := fs.Int("start", 0, "先頭サンプルを記録するフレーム")
	interval := fs.Int("interval", 1, "サンプル間のフレーム数")
	interp := fs.String("interp", channel.INTERPOLATION_CUBIC.String(), "キー補間方式(linear|constant|auto|smart)")
	mode := fs.String("mode", "replace", "適用モード(replace|additive|direct)")
	reduce := fs.Bool("reduce", false, "ベイク後にキーを削減する")
	tolerance := fs.Float64("tolerance", 1e-4, "キー削減の許容誤差")
	reset := fs.Bool("reset", false, "サンプルごとに初期姿勢へ戻す")
	lang := fs.String("lang", "ja", "表示言語(ja|en)")
	verbose := fs.Bool("v", false, "デバッグログを出力する")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	printer := messages.NewPrinter(*lang)
	if *rig == "" && fs.NArg() > 0 {
		*rig = fs.Arg(0)
	}
	if *clip == "" && fs.NArg() > 1 {
		*clip = fs.Arg(1)
	}
	if *out == "" && fs.NArg() > 2 {
		*out = fs.Arg(2)
	}
	if strings.TrimSpace(*rig) == "" {
		return options{}, usageError(printer, messages.MessageRigRequired)
	}
	if strings.TrimSpace(*clip) == "" {
		return options{}, usageError(printer, messages.MessageClipRequired)
	}
	interpolation, ok := channel.ParseInterpolation(strings.ToLower(*interp))
	if !ok {
		return options{}, errors.New(printer.Sprintf(messages.MessageInterpInvalid, *interp))
	}
	applyMode, ok := fkrig.ParseApplyMode(*mode)
	if !ok {
		return options{}, errors.New(printer.Sprintf(messages.MessageModeInvalid, *mode))
	}
	if *interval < 1 {
		return options{}, errors.New(printer.Sprintf(messages.MessageIntervalInvalid, *interval))
	}

	return options{
		rigPath:       *rig,
		clipPath:      *clip,
		outputPath:    *out,
		start:         *start,
		interval:      *interval,
		interpolation: interpolation,
		applyMode:     applyMode,
		reduce:        *reduce,
		tolerance:     *tolerance,
		resetPose:     *reset,
		lang:          *lang,
		verbose:       *verbose,
	}, nil
}

// usageError は使い方を添えたエラーを返す。
func usageError(printer *message.Printer, key string) error {
	return fmt.Errorf("%s\n%s: %s", printer.Sprintf(key), printer.Sprintf(messages.HelpUsageTitle), printer.Sprintf(messages.HelpUsage))
}

// cliProgressReporter はベイク進捗を標準出力へ表示する。フレーム進捗は1割ごとに出す。
type cliProgressReporter struct {
	out     io.Writer
	printer *message.Printer
}

// ReportBakeProgress はベイク処理進捗を表示する。
func (r *cliProgressReporter) ReportBakeProgress(event minteractor.BakeProgressEvent) {
	switch event.Type {
	case minteractor.BakeProgressEventTypeStarted:
		r.printer.Fprintln(r.out, r.printer.Sprintf(messages.LogBakeStarted, event.Total))
	case minteractor.BakeProgressEventTypeFrameRecorded:
		step := max(1, event.Total/10)
		done := event.Index + 1
		if done%step == 0 || done == event.Total {
			r.printer.Fprintln(r.out, r.printer.Sprintf(messages.LogBakeProgress, done, event.Total, event.Frame))
		}
	case minteractor.BakeProgressEventTypeReduced:
		r.printer.Fprintln(r.out, r.printer.Sprintf(messages.LogBakeReduced, event.Keys))
	case minteractor.BakeProgressEventTypeCompleted:
		r.printer.Fprintln(r.out, r.printer.Sprintf(messages.LogBakeCompleted, event.Total, event.Keys))
	}
}
