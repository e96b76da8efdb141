package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ensigniasec/signature-rain/internal/config"
	"github.com/ensigniasec/signature-rain/internal/sim"
	"github.com/ensigniasec/signature-rain/internal/theme"
	"github.com/ensigniasec/signature-rain/internal/tui"
)

//nolint:gochecknoglobals // Cobra requires package-level vars for flag bindings in current structure.
var (
	// Version metadata populated at build time via -ldflags.
	releaseVersion = "dev"
	commit         = "none"
	date           = "unknown"

	// Used for flags.
	configFile     = config.DefaultPath
	verbose        bool
	jsonOutput     bool
	reducedMotion  bool
	themeName      string
	seed           int64
	maxColumns     int
	initialColumns int
	logFile        string
	simDuration    = 10 * time.Second
	simHideAfter   time.Duration
	simNudge       time.Duration
	themesDir      string

	rootCmd = &cobra.Command{
		Use:   "rain",
		Short: "A digital rain of glyph columns in your terminal.",
		Long:  `Renders a bounded, self-regulating rain of falling glyph columns behind the Mario digital signature. Columns are spawned at a steady cadence, expire after their fall, and are trimmed when the screen gets crowded.`,
		Args:  cobra.NoArgs,
		Run:   runRain,
	}
)

//nolint:gochecknoinits // Cobra command wiring performed in init in current structure.
func init() {
	// Route logs to stderr to avoid polluting stdout, especially for --json output.
	logrus.SetOutput(os.Stderr)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", configFile, "Path to a YAML or JSON config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable detailed logging output")
	rootCmd.PersistentFlags().BoolVar(&reducedMotion, "reduced-motion", false, "Spawn columns at the slower reduced-motion cadence")
	rootCmd.PersistentFlags().StringVar(&themeName, "theme", "", "Theme name (see 'rain themes list')")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 0, "Seed for reproducible rain (0 picks a random seed)")
	rootCmd.PersistentFlags().IntVar(&maxColumns, "max-columns", 0, "Hard ceiling on live columns")
	rootCmd.PersistentFlags().IntVar(&initialColumns, "initial-columns", 0, "Columns spawned at start")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "Append logs to this file while the rain is on screen")

	simulateCmd.Flags().DurationVar(&simDuration, "duration", simDuration, "How long to run the simulation")
	simulateCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the report in JSON format instead of rich text")
	simulateCmd.Flags().DurationVar(&simHideAfter, "hide-after", 0, "Pause the rain after this long, as if the window were hidden")
	simulateCmd.Flags().DurationVar(&simNudge, "nudge", 0, "Request an extra spawn at this interval")
	rootCmd.AddCommand(simulateCmd)

	configShowCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the config in JSON format instead of YAML")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)
	rootCmd.AddCommand(configCmd)

	themesListCmd.Flags().StringVar(&themesDir, "dir", "", "Directory to discover themes in (defaults to the config's theme_dir)")
	themesCmd.AddCommand(themesListCmd)
	rootCmd.AddCommand(themesCmd)

	// Built-in version flag: set version string and a custom template.
	rootCmd.Version = releaseVersion
	rootCmd.Annotations = map[string]string{"commit": commit, "date": date}
	rootCmd.SetVersionTemplate("{{printf \"%s %s\\ncommit: %s\\ndate: %s\\n\" .DisplayName .Version (index .Annotations \"commit\") (index .Annotations \"date\")}}")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Fatal(err)
	}
}

func main() {
	Execute()
}

// setLogLevel applies --verbose; quiet commands only report warnings.
func setLogLevel(quiet bool) {
	switch {
	case verbose:
		logrus.SetLevel(logrus.DebugLevel)
	case quiet:
		logrus.SetLevel(logrus.WarnLevel)
	}
}

// resolveConfig layers the config file, RAIN_* environment variables and explicit flags,
// in that order, and validates the result.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.LoadOrDefault(configFile)
	if err != nil {
		return cfg, err
	}
	cfg.ApplyEnv(os.LookupEnv)

	flags := cmd.Flags()
	if flags.Changed("reduced-motion") {
		cfg.ReducedMotion = reducedMotion
	}
	if flags.Changed("theme") {
		cfg.Theme = themeName
	}
	if flags.Changed("max-columns") {
		cfg.MaxColumns = maxColumns
	}
	if flags.Changed("initial-columns") {
		cfg.InitialColumns = initialColumns
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func themeDir(cfg config.Config) string {
	if cfg.ThemeDir != "" {
		return cfg.ThemeDir
	}
	return theme.DefaultDir
}

func runRain(cmd *cobra.Command, _ []string) {
	setLogLevel(true)
	cfg, err := resolveConfig(cmd)
	if err != nil {
		logrus.Fatal(err)
	}
	th, err := theme.Lookup(cmd.Context(), cfg.Theme, themeDir(cfg))
	if err != nil {
		logrus.Fatal(err)
	}

	var logOut io.Writer
	if logFile != "" {
		expanded, err := config.ExpandTilde(logFile)
		if err != nil {
			logrus.Fatal(err)
		}
		f, err := os.OpenFile(expanded, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			logrus.Fatalf("Unable to open log file: %v", err)
		}
		defer f.Close()
		logOut = f
	}

	if err := tui.Run(cmd.Context(), tui.Options{Config: cfg, Theme: th, Seed: seed, LogOutput: logOut}); err != nil {
		logrus.Fatalf("Failed to initialize Mario Digital Signature: %v", err)
	}
}

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the rain headless for a while and report what happened",
	Long:  "Drives the same spawn, expiry and trim logic as the on-screen rain without drawing anything, then prints population statistics.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		setLogLevel(jsonOutput)
		cfg, err := resolveConfig(cmd)
		if err != nil {
			logrus.Fatal(err)
		}
		charset := cfg.Charset
		if charset == "" {
			th, err := theme.Lookup(cmd.Context(), cfg.Theme, themeDir(cfg))
			if err != nil {
				logrus.Fatal(err)
			}
			charset = th.Charset
		}

		report, err := sim.Run(cmd.Context(), sim.Options{
			Config:    cfg,
			Charset:   charset,
			Duration:  simDuration,
			Seed:      seed,
			HideAfter: simHideAfter,
			Nudge:     simNudge,
		})
		if err != nil {
			logrus.Fatal(err)
		}
		if err := sim.PrintReport(os.Stdout, report, jsonOutput); err != nil {
			logrus.Fatal(err)
		}
	},
}

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and manage the rain configuration",
}

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration (file, environment and flags applied)",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		setLogLevel(true)
		cfg, err := resolveConfig(cmd)
		if err != nil {
			logrus.Fatal(err)
		}
		var out []byte
		if jsonOutput {
			out, err = json.MarshalIndent(cfg, "", "  ")
			out = append(out, '\n')
		} else {
			out, err = yaml.Marshal(cfg)
		}
		if err != nil {
			logrus.Fatal(err)
		}
		_, _ = os.Stdout.Write(out)
	},
}

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var configInitCmd = &cobra.Command{
	Use:   "init [PATH]",
	Short: "Write the default configuration to a file",
	Long:  "Write the default configuration to PATH, or to the --config path when PATH is omitted. An existing file is left untouched.",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := configFile
		if len(args) == 1 {
			path = args[0]
		}
		expanded, err := config.ExpandTilde(path)
		if err != nil {
			logrus.Fatal(err)
		}
		if _, err := os.Stat(expanded); err == nil {
			logrus.Fatalf("Config file already exists: %s", expanded)
		} else if !errors.Is(err, os.ErrNotExist) {
			logrus.Fatal(err)
		}
		if err := config.Default().Save(expanded); err != nil {
			logrus.Fatal(err)
		}
		fmt.Fprintf(os.Stdout, "Wrote default config to %s\n", expanded)
	},
}

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var configValidateCmd = &cobra.Command{
	Use:   "validate [PATH]",
	Short: "Check a config file for errors",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := configFile
		if len(args) == 1 {
			path = args[0]
		}
		if _, err := config.Load(path); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stdout, "%s is valid\n", path)
	},
}

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "Browse the available themes",
}

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var themesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List built-in themes and themes discovered on disk",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		setLogLevel(false)
		dir := themesDir
		if dir == "" {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				logrus.Fatal(err)
			}
			dir = themeDir(cfg)
		}
		themes, err := theme.All(cmd.Context(), dir)
		if err != nil {
			logrus.Fatal(err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0) //nolint:mnd // column padding
		fmt.Fprintln(w, "NAME\tGLYPHS\tSOURCE")
		for _, t := range themes {
			fmt.Fprintf(w, "%s\t%s\t%s\n", t.Name, preview(t.Charset), t.Source)
		}
		_ = w.Flush()
	},
}

// preview shortens a charset for display.
func preview(charset string) string {
	const n = 12
	r := []rune(strings.TrimSpace(charset))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n]) + "…"
}
