package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/sagi-ba/photo-to-photo/internal/imaging"
)

// SampleImage is a bundled example photo exposed as an inline data URI.
type SampleImage struct {
	Name    string `json:"name"`
	DataURI string `json:"data_uri"`
}

var sampleExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".webp": {},
}

// Samples reads a directory of example images once per process. Unreadable
// files are skipped; a missing directory yields an empty list rather than
// an error, since samples are an optional convenience.
type Samples struct {
	dir string

	once   sync.Once
	images []SampleImage
}

// NewSamples prepares a sample loader rooted at dir.
func NewSamples(dir string) *Samples {
	return &Samples{dir: dir}
}

// List returns the loaded sample images sorted by filename.
func (s *Samples) List() []SampleImage {
	s.once.Do(s.load)
	out := make([]SampleImage, len(s.images))
	copy(out, s.images)
	return out
}

// Lookup resolves a sample by filename and returns its raw bytes along with
// a format hint derived from the extension.
func (s *Samples) Lookup(name string) ([]byte, string, error) {
	s.once.Do(s.load)
	base := filepath.Base(name)
	for _, img := range s.images {
		if img.Name == base {
			data, err := imaging.DecodeDataURI(img.DataURI)
			if err != nil {
				return nil, "", err
			}
			return data, formatForName(base), nil
		}
	}
	return nil, "", fmt.Errorf("catalog: sample %q not found", name)
}

func (s *Samples) load() {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, ok := sampleExtensions[ext]; !ok {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			continue
		}
		s.images = append(s.images, SampleImage{
			Name:    entry.Name(),
			DataURI: imaging.EncodeDataURI(data, formatForName(entry.Name())),
		})
	}
	sort.Slice(s.images, func(i, j int) bool { return s.images[i].Name < s.images[j].Name })
}

func formatForName(name string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	if ext == "jpg" {
		ext = "jpeg"
	}
	return ext
}
