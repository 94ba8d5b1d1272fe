package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"grove/internal/config"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// options collects the persistent flags. Flag values overlay the config file
// and environment only when set.
type options struct {
	configPath string
	flags      config.Config
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "grove:", err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "grove",
		Short: "Serve a plant leaf image classifier over HTTP",
		Long: "grove downloads a pretrained image classification model if it is missing, loads it once and serves POST /predict.\n\n" +
			"Class labels come from --labels-path (default <model>.labels.json) or --labels-url when either is available, " +
			"otherwise from the model's \"grove.labels\" metadata entry.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts, out)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "Config file (.yaml, .json, .toml); defaults to GROVE_CONFIG")
	pf.StringVar(&opts.flags.Addr, "addr", "", "HTTP listen address, e.g. :8080")
	pf.StringVar(&opts.flags.ModelURL, "model-url", "", "URL to download the model from when it is missing")
	pf.StringVar(&opts.flags.ModelPath, "model-path", "", "Local model file path")
	pf.StringVar(&opts.flags.ModelSHA256, "model-sha256", "", "Expected sha256 of the downloaded model")
	pf.StringVar(&opts.flags.LabelsURL, "labels-url", "", "URL to download the labels file from when it is missing")
	pf.StringVar(&opts.flags.LabelsPath, "labels-path", "", "Local labels file path (default: <model>.labels.json)")
	pf.StringSliceVar(&opts.flags.AllowedOrigins, "allowed-origins", nil, "CORS allowed origins (comma separated)")
	pf.StringVar(&opts.flags.TmpDir, "tmp-dir", "", "Directory for request-private upload files")
	pf.Int64Var(&opts.flags.MaxUploadBytes, "max-upload-bytes", 0, "Largest accepted upload in bytes")
	pf.IntVar(&opts.flags.MaxPixels, "max-pixels", 0, "Largest accepted image area (width*height) in pixels")
	pf.IntVar(&opts.flags.Sessions, "sessions", 0, "Runtime sessions for concurrent inference")
	pf.StringVar(&opts.flags.ONNXLibrary, "onnx-library", "", "Path to the onnxruntime shared library")
	pf.StringVar(&opts.flags.LogLevel, "log-level", "", "Log level: debug|info|warn|error")
	pf.StringVar(&opts.flags.LogFormat, "log-format", "", "Log format: json|console")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Provision the model and serve HTTP (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts, out)
		},
	}
	fetchCmd := &cobra.Command{
		Use:     "fetch",
		Short:   "Download missing model artifacts and exit",
		Example: "  grove fetch --model-url https://example.com/plant.onnx --model-path models/plant.onnx",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd.Context(), opts, out)
		},
	}
	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Report runtime and artifact readiness as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, out)
		},
	}
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(out, "grove %s\n", version)
			return err
		},
	}
	root.AddCommand(serveCmd, fetchCmd, checkCmd, versionCmd)
	return root
}
