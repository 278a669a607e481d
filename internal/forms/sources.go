package forms

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// SourceFile is a document in the input directory that can be digitized
type SourceFile struct {
	Path         string     `json:"path"`
	Name         string     `json:"name"`
	Kind         SourceKind `json:"kind"`
	Size         int64      `json:"size"`
	ModifiedTime string     `json:"modified_time"`
}

// ListSources walks the input directory for PDF, DOC and DOCX files, in
// lexical order. Paths are relative to the input directory. A non-empty
// query keeps only names containing it, ignoring case.
func (s *Service) ListSources(query string) ([]SourceFile, error) {
	root := s.inputs.Root()
	query = strings.ToLower(strings.TrimSpace(query))
	files := []SourceFile{}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Continue walking even if we encounter an error with a specific entry
			return nil //nolint:nilerr
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		kind, err := DetectSource(d.Name())
		if err != nil {
			return nil //nolint:nilerr
		}
		if query != "" && !strings.Contains(strings.ToLower(d.Name()), query) {
			return nil
		}

		info, err := d.Info()
		if err != nil || info.Size() == 0 || info.Size() > s.cfg.MaxFileSize {
			return nil //nolint:nilerr
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil //nolint:nilerr
		}
		files = append(files, SourceFile{
			Path:         filepath.ToSlash(rel),
			Name:         d.Name(),
			Kind:         kind,
			Size:         info.Size(),
			ModifiedTime: info.ModTime().Format("2006-01-02 15:04:05"),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
