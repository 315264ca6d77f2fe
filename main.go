// Package main provides the entry point for the letterboard CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/letterboard/internal/board"
	"github.com/dgnsrekt/letterboard/internal/glyph"
	"github.com/dgnsrekt/letterboard/internal/speech"
	"github.com/dgnsrekt/letterboard/internal/speech/engines"
	"github.com/dgnsrekt/letterboard/ui"
	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	style      string
	width      uint
	mouse      bool
	howToPlay  bool
	modeName   string
	genderName string
	engineName string

	rootCmd = &cobra.Command{
		Use:   "letterboard",
		Short: "Learn your letters in the terminal",
		Long: paragraph(
			fmt.Sprintf("\nA letter board for the terminal. %s over a letter to hear how it sounds!", keyword("Hover")),
		),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: execute,
	}
)

// validateStyle checks if the style is a default style, if not, checks that
// the custom style exists.
func validateStyle(style string) error {
	if style != styles.AutoStyle && styles.DefaultStyles[style] == nil {
		style = expandPath(style)
		if _, err := os.Stat(style); errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("specified style does not exist: %s", style)
		} else if err != nil {
			return fmt.Errorf("unable to stat file: %w", err)
		}
	}
	return nil
}

func validateOptions(cmd *cobra.Command) error {
	// grab config values from Viper
	width = viper.GetUint("width")
	mouse = viper.GetBool("mouse")
	howToPlay = viper.GetBool("how_to_play")
	modeName = viper.GetString("mode")
	genderName = viper.GetString("gender")
	engineName = viper.GetString("engine")

	if _, err := glyph.ParseMode(modeName); err != nil {
		return fmt.Errorf("invalid mode: %w", err)
	}
	if _, err := speech.ParseGender(genderName); err != nil {
		return fmt.Errorf("invalid gender: %w", err)
	}
	if !slices.Contains(engines.Names(), strings.ToLower(engineName)) {
		return fmt.Errorf("invalid engine %q: want one of %s", engineName, strings.Join(engines.Names(), ", "))
	}

	// A probe request catches out-of-range speech settings before the UI
	// starts.
	p := boardPolicy()
	for _, g := range []speech.Gender{speech.Female, speech.Male} {
		if err := speech.Validate(p.Utterance("probe", "a", glyph.Uppercase, g)); err != nil {
			return fmt.Errorf("invalid speech settings: %w", err)
		}
	}

	// validate the glamour style
	style = viper.GetString("style")
	if err := validateStyle(style); err != nil {
		return err
	}

	isTerminal := term.IsTerminal(int(os.Stdout.Fd()))
	// We want to use a special no-TTY style, when stdout is not a terminal
	// and there was no specific style passed by arg
	if !isTerminal && !cmd.Flags().Changed("style") {
		style = styles.NoTTYStyle
	}

	// Detect terminal width
	if !cmd.Flags().Changed("width") { //nolint:nestif
		if isTerminal && width == 0 {
			w, _, err := term.GetSize(int(os.Stdout.Fd()))
			if err == nil {
				width = uint(w) //nolint:gosec
			}

			if width > 120 {
				width = 120
			}
		}
		if width == 0 {
			width = 80
		}
	}
	return nil
}

// boardPolicy builds the speech parameters from the configuration.
func boardPolicy() board.Policy {
	p := board.DefaultPolicy()
	if viper.IsSet("speech.rate") {
		p.Rate = viper.GetFloat64("speech.rate")
	}
	if viper.IsSet("speech.volume") {
		p.Volume = viper.GetFloat64("speech.volume")
	}
	if viper.IsSet("speech.pitch.female") {
		p.FemalePitch = viper.GetFloat64("speech.pitch.female")
	}
	if viper.IsSet("speech.pitch.male") {
		p.MalePitch = viper.GetFloat64("speech.pitch.male")
	}
	return p.WithNativeLang(viper.GetString("speech.native_lang"))
}

func boardOptions() []board.Option {
	m, _ := glyph.ParseMode(modeName)
	g, _ := speech.ParseGender(genderName)
	return []board.Option{
		board.WithMode(m),
		board.WithGender(g),
		board.WithPolicy(boardPolicy()),
	}
}

func execute(cmd *cobra.Command, _ []string) error {
	// Without a terminal there is nothing to hover over; print the board
	// instead.
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		m, _ := glyph.ParseMode(modeName)
		return renderMarkdown(cmd.OutOrStdout(), glyph.Markdown(m))
	}
	return runTUI(cmd.Context())
}

func renderMarkdown(w io.Writer, md string) error {
	r, err := glamour.NewTermRenderer(
		glamour.WithColorProfile(lipgloss.ColorProfile()),
		glamour.WithStylePath(style),
		glamour.WithWordWrap(int(width)), //nolint:gosec
	)
	if err != nil {
		return fmt.Errorf("unable to create renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("unable to render markdown: %w", err)
	}
	if _, err = fmt.Fprint(w, out); err != nil {
		return fmt.Errorf("unable to write to writer: %w", err)
	}
	return nil
}

func runTUI(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Read environment to get debugging stuff
	cfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}

	// use style set in env, or the configured one if unset
	if cfg.GlamourStyle == "" || validateStyle(cfg.GlamourStyle) != nil {
		cfg.GlamourStyle = style
	}
	cfg.GlamourMaxWidth = width
	cfg.EnableMouse = mouse
	cfg.ShowHowToPlay = howToPlay
	cfg.BundleConfig = bundleConfig()

	sess, err := newSession(ctx, engineName)
	switch {
	case err != nil && strings.EqualFold(engineName, engines.NameAuto):
		log.Warn("No speech engine available, running without sound", "error", err)
		fmt.Fprintln(os.Stderr, "No speech engine found; run 'letterboard doctor' to set one up.")
	case err != nil:
		return err
	}

	var (
		b  *board.Board
		sp ui.Speaker
	)
	if sess != nil {
		defer sess.Close() //nolint:errcheck
		b = board.New(sess.speaker, boardOptions()...)
		sp = sess.speaker
	} else {
		b = board.New(nil, boardOptions()...)
	}

	// Run Bubble Tea program
	if _, err := ui.NewProgram(cfg, b, sp).Run(); err != nil {
		return fmt.Errorf("unable to run tui program: %w", err)
	}
	return nil
}

func expandPath(p string) string {
	if p == "" {
		return p
	}
	expanded, err := homedir.Expand(os.ExpandEnv(p))
	if err != nil {
		return p
	}
	return expanded
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err = rootCmd.ExecuteContext(ctx)
	stop()
	_ = closer()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// API keys may live in a .env file next to where the board is started.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn("Could not load .env file", "error", err)
	}

	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.PersistentFlags().StringVarP(&engineName, "engine", "e", engines.NameAuto, "speech engine ("+strings.Join(engines.Names(), ", ")+")")
	rootCmd.PersistentFlags().StringVarP(&modeName, "mode", "M", "uppercase", "board to start on (uppercase, lowercase, native, numbers)")
	rootCmd.PersistentFlags().StringVarP(&style, "style", "s", styles.AutoStyle, "style name or JSON path")
	rootCmd.PersistentFlags().UintVarP(&width, "width", "w", 0, "word-wrap at width (set to 0 to disable)")
	rootCmd.Flags().StringVarP(&genderName, "gender", "g", "female", "voice to start with (female, male)")
	rootCmd.Flags().BoolVarP(&mouse, "mouse", "m", true, "hover letters with the mouse")
	rootCmd.Flags().BoolVar(&howToPlay, "how-to-play", true, "show the How to Play panel")

	// Config bindings
	_ = viper.BindPFlag("engine", rootCmd.PersistentFlags().Lookup("engine"))
	_ = viper.BindPFlag("mode", rootCmd.PersistentFlags().Lookup("mode"))
	_ = viper.BindPFlag("style", rootCmd.PersistentFlags().Lookup("style"))
	_ = viper.BindPFlag("width", rootCmd.PersistentFlags().Lookup("width"))
	_ = viper.BindPFlag("gender", rootCmd.Flags().Lookup("gender"))
	_ = viper.BindPFlag("mouse", rootCmd.Flags().Lookup("mouse"))
	_ = viper.BindPFlag("how_to_play", rootCmd.Flags().Lookup("how-to-play"))

	viper.SetDefault("style", styles.AutoStyle)
	viper.SetDefault("width", 0)
	viper.SetDefault("mode", "uppercase")
	viper.SetDefault("gender", "female")
	viper.SetDefault("engine", engines.NameAuto)
	viper.SetDefault("mouse", true)
	viper.SetDefault("how_to_play", true)
	viper.SetDefault("speech.native_lang", "hi-IN")
	viper.SetDefault("cache.memory_mb", 16)
	viper.SetDefault("cache.disk_mb", 128)
	viper.SetDefault("piper.models", defaultPiperModels())
	viper.SetDefault("gtts.requests_per_minute", 60)
	viper.SetDefault("fallback.engine", engines.NameEspeak)
	viper.SetDefault("fallback.max_failures", engines.DefaultMaxFailures)

	rootCmd.AddCommand(configCmd, manCmd, exportCmd, voicesCmd, listCmd, doctorCmd, cacheCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "letterboard")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "letterboard")}, dirs...)
	}

	if c := os.Getenv("LETTERBOARD_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("letterboard")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("letterboard")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], "letterboard.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
