package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ManifestFile is the optional per-directory metadata file mapping file
// names to weight and credibility.
const ManifestFile = "manifest.yaml"

// DefaultWeight and DefaultCredibility apply to files absent from the
// manifest.
const (
	DefaultWeight      = 1.0
	DefaultCredibility = 0.7
)

// LoadOptions controls directory loading.
type LoadOptions struct {
	ChunkSize    int
	ChunkOverlap int
}

// LoadStats reports what happened during a directory load. Individual
// file failures are never fatal; they are counted and listed here.
type LoadStats struct {
	FilesLoaded  int
	FilesSkipped int
	Chunks       int
	SkippedFiles []string // "name (reason)" entries
}

type manifestEntry struct {
	Weight      *float64 `yaml:"weight"`
	Credibility *float64 `yaml:"credibility"`
}

// LoadDir walks dir recursively, loads every .txt and .md file, splits
// each into chunks and builds the corpus. Hidden files are ignored.
// Unreadable or empty files are skipped with a counted reason. A missing
// directory yields an empty corpus, not an error.
func LoadDir(dir string, opts LoadOptions, log *zap.Logger) (*Corpus, *LoadStats, error) {
	if log == nil {
		log = zap.NewNop()
	}
	stats := &LoadStats{}

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		log.Warn("material directory does not exist, corpus is empty", zap.String("dir", dir))
		return New(nil), stats, nil
	}

	manifest := loadManifest(dir, stats, log)

	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			stats.FilesSkipped++
			stats.SkippedFiles = append(stats.SkippedFiles, fmt.Sprintf("%s (walk: %v)", path, err))
			return nil
		}
		name := d.Name()
		if strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || name == ManifestFile {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".txt" && ext != ".md" {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("scan material dir %s: %w", dir, err)
	}

	var docs []Document
	for _, path := range files {
		name := filepath.Base(path)

		content, err := os.ReadFile(path)
		if err != nil {
			stats.FilesSkipped++
			stats.SkippedFiles = append(stats.SkippedFiles, fmt.Sprintf("%s (read: %v)", name, err))
			continue
		}
		text := strings.TrimSpace(string(content))
		if text == "" {
			stats.FilesSkipped++
			stats.SkippedFiles = append(stats.SkippedFiles, fmt.Sprintf("%s (empty)", name))
			continue
		}

		weight, cred := DefaultWeight, DefaultCredibility
		if entry, ok := manifest[name]; ok {
			if entry.Weight != nil {
				weight = *entry.Weight
			}
			if entry.Credibility != nil {
				cred = *entry.Credibility
			}
		}

		chunks := splitText(text, opts.ChunkSize, opts.ChunkOverlap)
		for i, ch := range chunks {
			breadcrumb := name
			if ch.heading != "" {
				breadcrumb = name + " > " + ch.heading
			}
			docs = append(docs, Document{
				SourceID:    fmt.Sprintf("%s#%d", name, i),
				Source:      name,
				Breadcrumb:  breadcrumb,
				Text:        ch.text,
				Weight:      weight,
				Credibility: cred,
			})
		}
		stats.FilesLoaded++
		stats.Chunks += len(chunks)
	}

	log.Info("material corpus loaded",
		zap.Int("files", stats.FilesLoaded),
		zap.Int("skipped", stats.FilesSkipped),
		zap.Int("chunks", stats.Chunks))
	if stats.FilesSkipped > 0 {
		log.Warn("some material files were skipped", zap.Strings("files", stats.SkippedFiles))
	}

	return New(docs), stats, nil
}

// loadManifest reads the optional manifest file. Malformed entries are
// dropped individually; a malformed file disables the manifest entirely
// with a warning.
func loadManifest(dir string, stats *LoadStats, log *zap.Logger) map[string]manifestEntry {
	path := filepath.Join(dir, ManifestFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var raw map[string]manifestEntry
	if err := yaml.Unmarshal(data, &raw); err != nil {
		log.Warn("manifest is malformed, using defaults for all files", zap.Error(err))
		stats.SkippedFiles = append(stats.SkippedFiles, fmt.Sprintf("%s (parse: %v)", ManifestFile, err))
		return nil
	}

	for name, entry := range raw {
		if (entry.Weight != nil && (*entry.Weight < 0 || *entry.Weight > 1)) ||
			(entry.Credibility != nil && (*entry.Credibility < 0 || *entry.Credibility > 1)) {
			log.Warn("manifest entry out of range, using defaults", zap.String("file", name))
			delete(raw, name)
		}
	}
	return raw
}
