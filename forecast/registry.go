package forecast

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/volfir1/EcoPulseBackend/models"
	"github.com/volfir1/EcoPulseBackend/schema"
)

// Registry persists fitted trend models as JSON artifacts on disk, one file
// per canonical target key. Saving overwrites the previous artifact.
type Registry struct {
	dir string
}

func NewRegistry(dir string) *Registry {
	return &Registry{dir: dir}
}

func (r *Registry) path(key string) string {
	return filepath.Join(r.dir, key+".json")
}

// Save writes the model artifact for its canonical key.
func (r *Registry) Save(model *models.TrendModel) error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("creating model dir: %w", err)
	}
	data, err := json.MarshalIndent(model, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding model %s: %w", model.Key, err)
	}
	if err := os.WriteFile(r.path(model.Key), data, 0o644); err != nil {
		return fmt.Errorf("writing model %s: %w", model.Key, err)
	}
	return nil
}

// Load reads the model for a target. A missing artifact is
// ErrModelNotTrained.
func (r *Registry) Load(target string) (*models.TrendModel, error) {
	key := schema.ModelKey(target)
	data, err := os.ReadFile(r.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrModelNotTrained, key)
		}
		return nil, fmt.Errorf("reading model %s: %w", key, err)
	}
	var model models.TrendModel
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, fmt.Errorf("decoding model %s: %w", key, err)
	}
	return &model, nil
}
