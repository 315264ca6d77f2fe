// Package export writes the downloadable source bundle: a zip archive with
// a README, its HTML rendering, the glyph catalogs and a default config.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/letterboard/internal/board"
	"github.com/dgnsrekt/letterboard/internal/glyph"
	"github.com/klauspost/compress/zip"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"
)

// FileName is the name of the archive written to the working directory.
const FileName = "letter-learning-app-source.zip"

// ErrExport wraps every failure to produce the archive.
var ErrExport = errors.New("unable to export source bundle")

// File is one entry of the archive.
type File struct {
	Name string
	Data []byte
}

// Bundle is the set of files written to the archive.
type Bundle struct {
	Files    []File
	Modified time.Time
}

// DefaultBundle assembles README.md, index.html, catalog.yaml and the
// default configuration as letterboard.yml.
func DefaultBundle(config []byte) (Bundle, error) {
	readme := README()

	html, err := HTML(readme)
	if err != nil {
		return Bundle{}, err
	}
	catalog, err := Catalog()
	if err != nil {
		return Bundle{}, err
	}

	return Bundle{
		Files: []File{
			{Name: "README.md", Data: []byte(readme)},
			{Name: "index.html", Data: html},
			{Name: "catalog.yaml", Data: catalog},
			{Name: "letterboard.yml", Data: config},
		},
		Modified: time.Now(),
	}, nil
}

// README returns the bundle's README in Markdown.
func README() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n%s\n\n%s\n\n", glyph.Header, glyph.Subtitle, glyph.VoiceHint)
	b.WriteString("## Playing\n\n")
	b.WriteString("Run `letterboard` in a terminal and move the mouse over the board. ")
	b.WriteString("Each letter lights up and is read aloud.\n\n")
	b.WriteString("| Key | Action |\n|---|---|\n")
	for _, row := range [][2]string{
		{"tab / shift+tab, 1-4", "switch between letters, small letters, Nepali letters and numbers"},
		{"f / m / g", "female voice, male voice, toggle"},
		{"arrows / hjkl", "move the cursor"},
		{"enter / space", "say the letter under the cursor again"},
		{"?", "show or hide How to Play"},
		{"y", "copy the letter under the cursor"},
		{"d", "download this bundle"},
		{"q", "quit"},
	} {
		fmt.Fprintf(&b, "| `%s` | %s |\n", row[0], row[1])
	}
	b.WriteString("\n")
	for _, m := range glyph.Modes() {
		b.WriteString(glyph.Markdown(m))
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "%s\n", glyph.Encouragement)
	return b.String()
}

// HTML renders Markdown into a standalone page.
func HTML(markdown string) ([]byte, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))

	var body bytes.Buffer
	if err := md.Convert([]byte(markdown), &body); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExport, err)
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&page, "<title>%s</title>\n", glyph.Header)
	page.WriteString("<style>body{font-family:sans-serif;max-width:48rem;margin:2rem auto}" +
		"table{border-collapse:collapse}td,th{border:1px solid #ccc;padding:.25rem .5rem}</style>\n")
	page.WriteString("</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.Bytes(), nil
}

type catalogFile struct {
	Modes []catalogMode `yaml:"modes"`
}

type catalogMode struct {
	Name   string        `yaml:"name"`
	Title  string        `yaml:"title"`
	Lang   string        `yaml:"lang"`
	Glyphs []glyph.Glyph `yaml:"glyphs"`
}

// Catalog returns every glyph catalog as YAML.
func Catalog() ([]byte, error) {
	policy := board.DefaultPolicy()

	var c catalogFile
	for _, m := range glyph.Modes() {
		c.Modes = append(c.Modes, catalogMode{
			Name:   m.String(),
			Title:  glyph.Title(m),
			Lang:   policy.Lang(m),
			Glyphs: glyph.Glyphs(m),
		})
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExport, err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExport, err)
	}
	return buf.Bytes(), nil
}

// Write stores the bundle as a zip archive at path. The archive is built in
// a temporary file next to path and renamed into place, so a failure never
// leaves a partial archive behind.
func Write(ctx context.Context, path string, b Bundle) (err error) {
	if len(b.Files) == 0 {
		return fmt.Errorf("%w: empty bundle", ErrExport)
	}
	seen := make(map[string]bool, len(b.Files))
	for _, f := range b.Files {
		if f.Name == "" || seen[f.Name] {
			return fmt.Errorf("%w: invalid or duplicate entry %q", ErrExport, f.Name)
		}
		seen[f.Name] = true
	}
	if b.Modified.IsZero() {
		b.Modified = time.Now()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".letterboard-export-*.zip")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExport, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	zw := zip.NewWriter(tmp)
	for _, f := range b.Files {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrExport, err)
		}
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     f.Name,
			Method:   zip.Deflate,
			Modified: b.Modified,
		})
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrExport, f.Name, err)
		}
		if _, err := w.Write(f.Data); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrExport, f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrExport, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("%w: %w", ErrExport, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrExport, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w: %w", ErrExport, err)
	}

	log.Info("Exported source bundle", "path", path, "files", len(b.Files))
	return nil
}
