// Package cli implements the learnerdata command line tool.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/learner-grades-api/internal/dto"
	"github.com/noah-isme/learner-grades-api/internal/input"
	"github.com/noah-isme/learner-grades-api/internal/models"
	"github.com/noah-isme/learner-grades-api/internal/sample"
	"github.com/noah-isme/learner-grades-api/internal/service"
	"github.com/noah-isme/learner-grades-api/pkg/config"
	appErrors "github.com/noah-isme/learner-grades-api/pkg/errors"
	"github.com/noah-isme/learner-grades-api/pkg/export"
	"github.com/noah-isme/learner-grades-api/pkg/logger"
)

var errPDFNeedsFile = errors.New("pdf output requires --out")

type app struct {
	logger   *zap.Logger
	learners *service.LearnerService
	exports  *service.ExportService
}

func (rt *app) setup(logLevel string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logr, err := logger.NewCLI(logLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	rt.logger = logr
	rt.learners = service.NewLearnerService(validator.New(), logr.Named("learner"), service.WithClock(cfg.Grading.Clock()))
	rt.exports = service.NewExportService(
		service.ExportConfig{Title: cfg.Export.Title},
		logr.Named("export"),
		export.NewCSVExporter(),
		export.NewPDFExporter(),
	)
	return nil
}

type outputOptions struct {
	format string
	out    string
	at     string
}

func (o *outputOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.format, "output", "o", string(dto.ExportFormatJSON), "Output format: json, csv or pdf")
	cmd.Flags().StringVar(&o.out, "out", "", "Write the result to this file instead of stdout")
	cmd.Flags().StringVar(&o.at, "at", "", "Evaluation time (YYYY-MM-DD or RFC 3339)")
}

// NewRootCmd builds the learnerdata command tree.
func NewRootCmd() *cobra.Command {
	rt := &app{}
	var logLevel string

	root := &cobra.Command{
		Use:           "learnerdata",
		Short:         "Learner grade calculator",
		Long:          `Validate course submissions and compute weighted learner averages.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return rt.setup(logLevel)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if rt.logger != nil {
				_ = rt.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level written to stderr")

	root.AddCommand(newComputeCmd(rt), newSampleCmd(rt))
	return root
}

func newComputeCmd(rt *app) *cobra.Command {
	opts := &outputOptions{}
	cmd := &cobra.Command{
		Use:   "compute <file>",
		Short: "Compute learner averages from a JSON or TOML document",
		Long: `Compute learner averages from a JSON or TOML document.

Examples:
  # Print learner summaries
  learnerdata compute course.json

  # Render a PDF report as of a fixed date
  learnerdata compute course.toml --output pdf --out report.pdf --at 2024-06-01`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := input.Load(args[0])
			if err != nil {
				return err
			}
			return rt.run(cmd, req, opts)
		},
	}
	opts.bind(cmd)
	return cmd
}

func newSampleCmd(rt *app) *cobra.Command {
	opts := &outputOptions{}
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Compute learner averages for the built-in sample course",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rt.run(cmd, sample.Request(), opts)
		},
	}
	opts.bind(cmd)
	return cmd
}

func (rt *app) run(cmd *cobra.Command, req dto.LearnerDataRequest, opts *outputOptions) error {
	format, ok := dto.ParseExportFormat(opts.format)
	if !ok {
		return fmt.Errorf("unknown output format %q", opts.format)
	}
	if format == dto.ExportFormatPDF && opts.out == "" {
		return errPDFNeedsFile
	}
	if opts.at != "" {
		at, err := models.ParseDate(opts.at)
		if err != nil {
			return fmt.Errorf("--at: %w", err)
		}
		req.EvaluateAt = &at
	}

	learners, err := rt.learners.Compute(req)
	if err != nil {
		appErr := appErrors.FromError(err)
		if printErr := logJSONCmd(cmd, models.LearnerDataResult{Error: appErr.Message}); printErr != nil {
			return printErr
		}
		return appErr
	}

	if format == dto.ExportFormatJSON {
		result := models.LearnerDataResult{Learners: learners}
		if opts.out == "" {
			return logJSONCmd(cmd, result)
		}
		payload, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		return rt.writeFile(cmd, opts.out, payload)
	}

	report, err := rt.exports.Render(format, req.AssignmentGroup, learners)
	if err != nil {
		return err
	}
	if opts.out == "" {
		_, err = cmd.OutOrStdout().Write(report.Payload)
		return err
	}
	return rt.writeFile(cmd, opts.out, report.Payload)
}

func (rt *app) writeFile(cmd *cobra.Command, path string, payload []byte) error {
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	rt.logger.Debug("report written", zap.String("path", path), zap.Int("bytes", len(payload)))
	logOKCmd(cmd, "wrote %s (%d bytes)", path, len(payload))
	return nil
}

// Execute runs the command tree against os.Args and returns the process exit code.
func Execute() int {
	root := NewRootCmd()
	cmd, err := root.ExecuteC()
	if err != nil {
		if cmd == nil {
			cmd = root
		}
		logErrorCmd(cmd, err)
		return 1
	}
	return 0
}
