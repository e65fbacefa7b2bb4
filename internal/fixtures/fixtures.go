// Package fixtures bundles the static incident documents served when the record store is unreachable.
package fixtures

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"go.uber.org/zap"

	"github.com/nagarrakshak/caseledger/internal/model"
)

//go:embed data/*.json
var dataFS embed.FS

// Loader reads the embedded fixture set.
type Loader struct {
	fsys fs.FS
	log  *zap.Logger
}

// NewLoader returns a loader over the embedded documents.
func NewLoader(log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{fsys: dataFS, log: log}
}

// Names lists fixture document names in load order.
func (l *Loader) Names() ([]string, error) {
	matches, err := fs.Glob(l.fsys, "data/*.json")
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, path.Base(m))
	}
	return out, nil
}

// Load decodes every fixture, one incident per document.
func (l *Loader) Load() ([]model.IncidentRecord, error) {
	names, err := l.Names()
	if err != nil {
		return nil, err
	}
	out := make([]model.IncidentRecord, 0, len(names))
	for _, n := range names {
		b, err := fs.ReadFile(l.fsys, path.Join("data", n))
		if err != nil {
			return nil, fmt.Errorf("read fixture %s: %w", n, err)
		}
		var rec model.IncidentRecord
		if err := json.Unmarshal(b, &rec); err != nil {
			return nil, fmt.Errorf("decode fixture %s: %w", n, err)
		}
		out = append(out, rec)
	}
	l.log.Debug("fixtures loaded", zap.Int("count", len(out)))
	return out, nil
}
