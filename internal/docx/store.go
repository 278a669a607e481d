package docx

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/a3tai/mcp-diarias/internal/errors"
)

// TemplateStore loads DOCX templates from a directory and keeps their bytes
// cached. Callers get the shared bytes and must not modify them.
type TemplateStore struct {
	dir   string
	cache *gocache.Cache
}

// NewTemplateStore creates a store over dir. A ttl of zero disables caching.
func NewTemplateStore(dir string, ttl time.Duration) *TemplateStore {
	s := &TemplateStore{dir: dir}
	if ttl > 0 {
		s.cache = gocache.New(ttl, 2*ttl)
	}
	return s
}

// Dir returns the templates directory
func (s *TemplateStore) Dir() string {
	return s.dir
}

// Load returns the bytes of the named template. A missing or unreadable
// template is a deployment defect.
func (s *TemplateStore) Load(name string) ([]byte, error) {
	if name == "" || filepath.Base(name) != name {
		return nil, errors.New(errors.ErrorTypeTemplateStructural,
			fmt.Sprintf("Nome de template inválido: %q.", name))
	}

	if s.cache != nil {
		if data, ok := s.cache.Get(name); ok {
			return data.([]byte), nil
		}
	}

	full := filepath.Join(s.dir, name)
	data, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrorTypeTemplateStructural,
				fmt.Sprintf("Template %s não encontrado em %s.", name, s.dir))
		}
		return nil, errors.Wrap(errors.ErrorTypeTemplateStructural,
			fmt.Sprintf("Falha ao abrir o template %s.", name), err)
	}

	if s.cache != nil {
		s.cache.Set(name, data, gocache.DefaultExpiration)
	}
	return data, nil
}

// Invalidate drops every cached template, for redeployed templates
func (s *TemplateStore) Invalidate() {
	if s.cache != nil {
		s.cache.Flush()
	}
}
