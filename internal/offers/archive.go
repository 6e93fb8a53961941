// Package offers lists the promotional images stored under day-named
// directories, one directory per weekday.
package offers

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// Days is the fixed 7-day vocabulary; offer requests must normalize to one
// of these.
var Days = []string{
	"Domingo", "Segunda-feira", "Terça-feira", "Quarta-feira",
	"Quinta-feira", "Sexta-feira", "Sábado",
}

// NormalizeDay maps a free-form day token onto the fixed vocabulary.
func NormalizeDay(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, d := range Days {
		if strings.ToLower(d) == s {
			return d, true
		}
	}
	return "", false
}

type Image struct {
	Path     string
	Filename string
	Caption  string
}

// Archive reads offer images from the local filesystem.
type Archive struct {
	dir string
}

func NewArchive(dir string) *Archive {
	return &Archive{dir: dir}
}

var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true,
}

// List returns the images for a normalized day name. A missing day
// directory simply means no offers.
func (a *Archive) List(day string) ([]Image, error) {
	entries, err := os.ReadDir(filepath.Join(a.dir, day))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var images []Image
	for _, e := range entries {
		if e.IsDir() || !imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		images = append(images, Image{
			Path:     filepath.Join(a.dir, day, e.Name()),
			Filename: e.Name(),
			Caption:  captionFor(e.Name()),
		})
	}
	return images, nil
}

// captionFor derives a caption from the filename stem: underscores and
// hyphens become spaces, first letter upper-cased, wrapped in sparkles.
func captionFor(filename string) string {
	stem := filename
	if i := strings.IndexByte(stem, '.'); i >= 0 {
		stem = stem[:i]
	}
	stem = strings.NewReplacer("_", " ", "-", " ").Replace(stem)
	r := []rune(stem)
	if len(r) > 0 {
		r[0] = unicode.ToUpper(r[0])
	}
	return "✨ " + string(r) + " ✨"
}
