package engines

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/gitcha"
)

// Dependency is the state of one thing an engine needs.
type Dependency struct {
	Name         string
	Required     bool
	Installed    bool
	Version      string
	Path         string
	Instructions string
}

// Report lists the dependencies of one or more engines.
type Report struct {
	Engines []string
	Deps    []Dependency
}

// OK reports whether every required dependency is installed.
func (r Report) OK() bool {
	for _, d := range r.Deps {
		if d.Required && !d.Installed {
			return false
		}
	}
	return true
}

// Check inspects the dependencies of engine. An empty name or "auto" checks
// the local engines.
func Check(ctx context.Context, engine string, cfg Config) (Report, error) {
	ffmpeg := func(required bool) Dependency {
		d := checkBinary(ctx, NewTranscoder(cfg.FFmpeg).Binary, "-version", ffmpegInstructions())
		d.Required = required
		if d.Version != "" {
			if f := strings.Fields(d.Version); len(f) >= 3 {
				d.Version = f[2]
			}
		}
		return d
	}

	var r Report
	add := func(name string, deps ...Dependency) {
		r.Engines = append(r.Engines, name)
		for _, d := range deps {
			if !containsDep(r.Deps, d.Name) {
				r.Deps = append(r.Deps, d)
			}
		}
	}

	switch strings.ToLower(engine) {
	case "", NameAuto:
		add(NamePiper, checkPiper(ctx, cfg)...)
		add(NameEspeak, checkEspeak(ctx, cfg))
		add(NameGTTS, checkGTTS(ctx, cfg), ffmpeg(false))
	case NamePiper:
		add(NamePiper, append(checkPiper(ctx, cfg), ffmpeg(false))...)
	case NameEspeak:
		add(NameEspeak, checkEspeak(ctx, cfg), ffmpeg(false))
	case NameGTTS:
		add(NameGTTS, checkGTTS(ctx, cfg), ffmpeg(true))
	case NameOpenAI:
		add(NameOpenAI, checkKey("OPENAI_API_KEY", cfg.OpenAIKey, "https://platform.openai.com/api-keys"), ffmpeg(false))
	case NameGemini:
		add(NameGemini, checkKey("GEMINI_API_KEY", cfg.GeminiKey, "https://aistudio.google.com/apikey"), ffmpeg(false))
	case NameMock, NameNone:
		add(engine)
	default:
		return r, fmt.Errorf("unknown engine: %s", engine)
	}
	return r, nil
}

func containsDep(deps []Dependency, name string) bool {
	for _, d := range deps {
		if d.Name == name {
			return true
		}
	}
	return false
}

func checkBinary(ctx context.Context, bin, versionFlag, instructions string) Dependency {
	d := Dependency{Name: bin, Required: true}
	path, err := lookPath(bin)
	if err != nil {
		d.Instructions = instructions
		return d
	}
	d.Installed = true
	d.Path = path

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if out, err := run(ctx, path, []string{versionFlag}, nil); err == nil {
		d.Version = firstLine(string(out))
	}
	return d
}

func checkEspeak(ctx context.Context, cfg Config) Dependency {
	e := NewEspeak(cfg.Espeak, nil)
	bin, err := e.binary()
	if err != nil {
		bin = e.bin
	}
	d := checkBinary(ctx, bin, "--version", espeakInstructions())
	d.Name = "espeak-ng"
	return d
}

func checkGTTS(ctx context.Context, cfg Config) Dependency {
	bin := cfg.GTTSBinary
	if bin == "" {
		bin = "gtts-cli"
	}
	d := checkBinary(ctx, bin, "--version", "Install with pip:\n    pip install gtts\n    Or: pipx install gtts")
	d.Name = "gtts-cli"
	return d
}

func checkPiper(ctx context.Context, cfg Config) []Dependency {
	bin := cfg.PiperBinary
	if bin == "" {
		bin = "piper"
	}
	piper := checkBinary(ctx, bin, "--help", piperInstructions())
	piper.Name = "piper"
	if piper.Installed {
		piper.Version = "installed"
	}

	models := Dependency{
		Name:     "piper models",
		Required: true,
		Path:     cfg.PiperModels,
		Instructions: "Download models from: https://github.com/rhasspy/piper/blob/master/VOICES.md\n" +
			"    Example: wget https://huggingface.co/rhasspy/piper-voices/resolve/main/en/en_US/amy/medium/en_US-amy-medium.onnx\n" +
			"    Place in: " + cfg.PiperModels,
	}
	if cfg.PiperModels == "" {
		return []Dependency{piper, models}
	}
	if _, err := os.Stat(cfg.PiperModels); err != nil {
		return []Dependency{piper, models}
	}
	ch, err := gitcha.FindAllFilesExcept(cfg.PiperModels, []string{"*.onnx"}, nil)
	if err != nil {
		return []Dependency{piper, models}
	}
	var count int
	var size uint64
	for res := range ch {
		count++
		if res.Info != nil {
			size += uint64(res.Info.Size())
		}
	}
	if count > 0 {
		models.Installed = true
		models.Instructions = ""
		models.Version = fmt.Sprintf("%d models, %s", count, humanize.Bytes(size))
	}
	return []Dependency{piper, models}
}

func checkKey(name, value, url string) Dependency {
	d := Dependency{Name: name, Required: true}
	if value != "" {
		d.Installed = true
		d.Version = "set"
		return d
	}
	d.Instructions = fmt.Sprintf("Create a key at %s\n    and export %s or add it to .env", url, name)
	return d
}

// Render formats the report for the terminal.
func (r Report) Render() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).MarginBottom(1)
	installedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	missingStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	optionalStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	b.WriteString(titleStyle.Render("Speech Engine Check: " + strings.Join(r.Engines, ", ")))
	b.WriteString("\n\n")

	for _, d := range r.Deps {
		switch {
		case d.Installed:
			b.WriteString(installedStyle.Render("  ✓ " + d.Name + ": "))
			b.WriteString(strings.TrimSpace(d.Path + " " + d.Version))
		case d.Required:
			b.WriteString(missingStyle.Render("  ✗ " + d.Name + ": "))
			b.WriteString("Not found")
		default:
			b.WriteString(optionalStyle.Render("  ○ " + d.Name + ": "))
			b.WriteString("Not found (optional)")
		}
		b.WriteString("\n")
		if !d.Installed && d.Instructions != "" {
			fmt.Fprintf(&b, "    %s\n", d.Instructions)
		}
	}
	return b.String()
}

func espeakInstructions() string {
	switch runtime.GOOS {
	case "darwin":
		return "Install with: brew install espeak-ng"
	case "linux":
		return linuxInstall("espeak-ng")
	case "windows":
		return "Download from: https://github.com/espeak-ng/espeak-ng/releases"
	default:
		return "Install espeak-ng from: https://github.com/espeak-ng/espeak-ng"
	}
}

func piperInstructions() string {
	switch runtime.GOOS {
	case "darwin":
		return "Install with: brew install piper-tts\n    Or download from: https://github.com/rhasspy/piper/releases"
	default:
		return "Download from: https://github.com/rhasspy/piper/releases\n    Extract and add to PATH"
	}
}

func ffmpegInstructions() string {
	switch runtime.GOOS {
	case "darwin":
		return "Install with: brew install ffmpeg"
	case "linux":
		return linuxInstall("ffmpeg")
	case "windows":
		return "Download from: https://ffmpeg.org/download.html\n    Extract and add to PATH"
	default:
		return "Install ffmpeg from: https://ffmpeg.org/download.html"
	}
}

func linuxInstall(pkg string) string {
	switch detectLinuxDistro() {
	case "ubuntu", "debian":
		return "Install with: sudo apt-get install " + pkg
	case "fedora", "rhel":
		return "Install with: sudo dnf install " + pkg
	case "arch":
		return "Install with: sudo pacman -S " + pkg
	default:
		return "Install with your package manager: " + pkg
	}
}

func detectLinuxDistro() string {
	data, err := os.ReadFile("/etc/os-release")
	if err != nil {
		return "unknown"
	}
	content := strings.ToLower(string(data))
	for _, d := range []string{"ubuntu", "debian", "fedora", "arch", "rhel", "centos"} {
		if strings.Contains(content, d) {
			if d == "centos" {
				return "rhel"
			}
			return d
		}
	}
	return "unknown"
}
