package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# board to start on: uppercase, lowercase, native or numbers
mode: "uppercase"
# voice to start with: female or male
gender: "female"
# speech engine: auto, espeak, piper, gtts, openai, gemini, mock or none
engine: "auto"
# hover letters with the mouse
mouse: true
# show the How to Play panel
how_to_play: true
# style name or JSON path for the How to Play panel (default "auto")
style: "auto"
# write debug output to the log file
debug: false

speech:
  # speaking rate, 1.0 is the engine's normal speed
  rate: 0.7
  # playback volume between 0.0 and 1.0
  volume: 0.8
  pitch:
    female: 1.3
    male: 0.8
  # language requested for the native script board
  native_lang: "hi-IN"

cache:
  # directory for rendered audio (default: user cache dir)
  # dir: "~/.cache/letterboard/audio"
  memory_mb: 16
  disk_mb: 128

espeak:
  binary: "espeak-ng"

piper:
  binary: "piper"
  # directory searched for *.onnx voice models
  models: "~/.local/share/piper-voices"

gtts:
  binary: "gtts-cli"
  requests_per_minute: 60

# API keys are read from OPENAI_API_KEY and GEMINI_API_KEY, or a .env file.
openai:
  model: "tts-1"

gemini:
  model: "gemini-2.5-flash-preview-tts"

# local engine used when gtts, openai or gemini keep failing
fallback:
  engine: "espeak"
  max_failures: 3

ffmpeg:
  binary: "ffmpeg"
`

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the letterboard config file",
	Long:    paragraph(fmt.Sprintf("\n%s the letterboard config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("letterboard config\nletterboard config --config path/to/config.yml"),
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("Letterboard", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
	// Skip option validation so that a broken config can still be fixed.
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
		if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil { //nolint:gosec
			return fmt.Errorf("could not write configuration file: %w", err)
		}
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		// File doesn't exist yet, create all necessary directories and
		// write the default config file
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("unable to create config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(defaultConfig); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil { // some other error occurred
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}

// bundleConfig returns the configuration shipped in exported bundles: the
// file in use, or the default one.
func bundleConfig() []byte {
	if used := viper.ConfigFileUsed(); used != "" {
		b, err := os.ReadFile(used)
		if err == nil {
			return b
		}
		log.Debug("Falling back to default config for export", "error", err)
	}
	return []byte(defaultConfig)
}
