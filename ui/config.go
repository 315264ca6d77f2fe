package ui

// Config contains TUI-specific configuration.
type Config struct {
	GlamourStyle    string `env:"GLAMOUR_STYLE"`
	GlamourMaxWidth uint
	EnableMouse     bool
	ShowHowToPlay   bool

	// Directory the source bundle is exported to. Empty means the working
	// directory.
	ExportDir string

	// Configuration file contents shipped inside the exported bundle.
	BundleConfig []byte

	// For debugging the UI
	GlamourEnabled bool `env:"LETTERBOARD_ENABLE_GLAMOUR" envDefault:"true"`
	CompactGrid    bool `env:"LETTERBOARD_COMPACT_GRID"`
}
