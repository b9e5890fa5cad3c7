package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tagscout/internal/logger"
	"tagscout/internal/recognize"

	"go.senan.xyz/taglib"
)

// Scanner collects MP3 files and reads their tags and audio properties
// into the records the recognition pipeline works on.
type Scanner struct {
	logger *logger.Logger
}

// NewScanner creates a Scanner.
func NewScanner(log *logger.Logger) *Scanner {
	if log == nil {
		log = logger.New(false)
	}
	return &Scanner{logger: log}
}

// FindMP3Files recursively finds all MP3 files under dir.
func FindMP3Files(dir string) ([]string, error) {
	if dir == "" {
		return nil, fmt.Errorf("directory path cannot be empty")
	}

	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("directory does not exist: %s", dir)
	}

	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}

		if !info.IsDir() && strings.EqualFold(filepath.Ext(path), ".mp3") {
			files = append(files, path)
		}
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("error walking directory %s: %w", dir, err)
	}

	return files, nil
}

// Scan reads every MP3 under dir. Files whose headers cannot be parsed
// are still included with whatever could be salvaged; the pipeline's
// fallback stages exist exactly for those.
func (s *Scanner) Scan(dir string) ([]recognize.File, error) {
	paths, err := FindMP3Files(dir)
	if err != nil {
		return nil, err
	}

	var files []recognize.File
	for _, path := range paths {
		f, err := s.Read(path)
		if err != nil {
			s.logger.Warn("Skipping unreadable file %s: %v", path, err)
			continue
		}
		files = append(files, f)
	}

	s.logger.Debug("Scanned %d of %d files in %s", len(files), len(paths), dir)
	return files, nil
}

// Read builds the pipeline record for a single file. Tag or property
// read failures are not errors; only a failed stat is.
func (s *Scanner) Read(path string) (recognize.File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return recognize.File{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	f := recognize.File{
		Path:      path,
		Filename:  filepath.Base(path),
		Directory: filepath.Dir(path),
		Size:      info.Size(),
		ModTime:   info.ModTime().Unix(),
	}

	tags, err := taglib.ReadTags(path)
	if err != nil {
		s.logger.Debug("  Unreadable tags in %s: %v", f.Filename, err)
	} else {
		f.Artist = firstTag(tags, taglib.Artist)
		f.Title = firstTag(tags, taglib.Title)
		f.Album = firstTag(tags, taglib.Album)
	}

	props, err := taglib.ReadProperties(path)
	if err != nil {
		s.logger.Debug("  Unreadable properties in %s: %v", f.Filename, err)
	} else {
		f.DurationSeconds = int(props.Length.Seconds())
		f.Bitrate = int(props.Bitrate)
		f.SampleRate = int(props.SampleRate)
	}

	return f, nil
}

func firstTag(tags map[string][]string, key string) string {
	if vals, ok := tags[key]; ok && len(vals) > 0 {
		return strings.TrimSpace(vals[0])
	}
	return ""
}
