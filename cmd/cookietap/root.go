package main

import (
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/AntonStoeckl/cookie-interceptor-go/cookiehook/singleton"
)

const demoScript = `# plain cookie write
set https://shop.example.test/ session=abc123; Path=/
# clear-then-set write
set https://shop.example.test/ tracking=; Max-Age=0
set-async https://shop.example.test/cart cart=3; Path=/cart; Max-Age=3600
get https://shop.example.test/cart
has
remove-expired
remove-session
get https://shop.example.test/cart
flush
`

// newRootCommand builds the cookietap command tree. Every invocation gets its own viper instance.
func newRootCommand(out, errOut io.Writer) *cobra.Command {
	v := viper.New()
	var configFile string

	root := &cobra.Command{
		Use:           "cookietap",
		Short:         "Observe cookie writes of a host by intercepting its cookie service",
		Long:          `cookietap boots a reference host, installs the cookie interceptor on its provider slot and drives cookie calls through it. Every cookie write is reported to the configured sink.`,
		SilenceUsage:  true,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (YAML)")
	flags.String("store", storeMemory, "cookie store: memory or postgres")
	flags.String("sink", sinkFormatLog, "sink format: log, jsonl or both")
	flags.Bool("stack", false, "report the call-origin trace of every cookie write")
	flags.Bool("metrics", false, "print a metrics summary after the run")
	flags.String("metrics-backend", metricsBackendPrometheus, "metrics backend: prometheus or otel")
	flags.Bool("tracing", false, "print an OpenTelemetry span summary after the run")
	flags.String("log-level", "info", "log level: debug, info, warn or error")
	flags.String("log-format", logFormatText, "log format: text, json or otel")

	bindFlags(v, root, map[string]string{
		"store.type":      "store",
		"sink.format":     "sink",
		"sink.stack":      "stack",
		"metrics.enabled": "metrics",
		"metrics.backend": "metrics-backend",
		"tracing.enabled": "tracing",
		"log.level":       "log-level",
		"log.format":      "log-format",
	})

	root.AddCommand(
		newDemoCommand(v, &configFile),
		newRunCommand(v, &configFile),
	)

	return root
}

func bindFlags(v *viper.Viper, cmd *cobra.Command, keys map[string]string) {
	for key, flag := range keys {
		_ = v.BindPFlag(key, cmd.PersistentFlags().Lookup(flag))
	}
}

func newDemoCommand(v *viper.Viper, configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run a built-in script showing plain and clear-then-set cookie writes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCommands(cmd, v, *configFile, strings.NewReader(demoScript))
		},
	}
}

func newRunCommand(v *viper.Viper, configFile *string) *cobra.Command {
	var scriptPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a script of cookie calls",
		Long: `Run executes one cookie call per script line:

  set URL VALUE
  set-async URL VALUE
  get URL
  has
  remove-session
  remove-all
  remove-expired
  flush
  accept BOOL

Blank lines and lines starting with # are ignored. Use --script - to read from stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if scriptPath == "-" {
				return runCommands(cmd, v, *configFile, cmd.InOrStdin())
			}

			f, err := os.Open(scriptPath)
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()

			return runCommands(cmd, v, *configFile, f)
		},
	}

	cmd.Flags().StringVar(&scriptPath, "script", "", "script file, or - for stdin")
	_ = cmd.MarkFlagRequired("script")

	return cmd
}

// runCommands parses script, boots the host in the process-wide slot and runs the script through it.
func runCommands(cmd *cobra.Command, v *viper.Viper, configFile string, script io.Reader) error {
	cfg, err := loadConfig(v, configFile)
	if err != nil {
		return err
	}

	commands, err := parseScript(script)
	if err != nil {
		return err
	}

	h, err := bootHost(cmd.Context(), cfg, singleton.Default, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer h.close()

	if err = runScript(cmd.Context(), singleton.Current, commands, cmd.OutOrStdout()); err != nil {
		return err
	}

	return h.writeSummaries(cmd.Context(), cmd.OutOrStdout())
}
