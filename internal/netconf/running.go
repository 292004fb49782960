package netconf

import (
	"encoding/json"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/projecteru2/yanet/pkg/terrors"
)

// RunningConfig is the last successfully applied legacy configuration,
// kept in the original flat attribute shape. It is read once at the start
// of an operation and treated as an immutable snapshot during the
// computation.
type RunningConfig struct {
	Networks map[string]map[string]any `json:"networks"`
	Bondings map[string]map[string]any `json:"bondings"`
}

// NewRunningConfig .
func NewRunningConfig() *RunningConfig {
	return &RunningConfig{
		Networks: map[string]map[string]any{},
		Bondings: map[string]map[string]any{},
	}
}

// LoadRunningConfig reads the persisted snapshot; a missing file yields
// an empty config.
func LoadRunningConfig(path string) (*RunningConfig, error) {
	buf, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		return NewRunningConfig(), nil
	case err != nil:
		return nil, errors.Wrapf(terrors.ErrLoadRunningConfig, "%s: %s", path, err)
	}

	cfg := NewRunningConfig()
	if err := json.Unmarshal(buf, cfg); err != nil {
		return nil, errors.Wrapf(terrors.ErrLoadRunningConfig, "%s: %s", path, err)
	}
	return cfg, nil
}

// Save persists the snapshot.
func (c *RunningConfig) Save(path string) error {
	buf, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Wrapf(terrors.ErrSaveRunningConfig, "%s", err)
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return errors.Wrapf(terrors.ErrSaveRunningConfig, "%s: %s", path, err)
	}
	return nil
}

// NetworkConfigs decodes every persisted network entry.
func (c *RunningConfig) NetworkConfigs() (map[string]*NetworkConfig, error) {
	nets := make(map[string]*NetworkConfig, len(c.Networks))
	for name, attrs := range c.Networks {
		cfg, err := NewNetworkConfig(name, attrs)
		if err != nil {
			return nil, err
		}
		nets[name] = cfg
	}
	return nets, nil
}

// Update folds one applied batch into the snapshot: removed entries are
// dropped, everything else is stored verbatim.
func (c *RunningConfig) Update(nets, bonds map[string]map[string]any) {
	for name, attrs := range nets {
		if isRemove(attrs) {
			delete(c.Networks, name)
			continue
		}
		c.Networks[name] = attrs
	}
	for name, attrs := range bonds {
		if isRemove(attrs) {
			delete(c.Bondings, name)
			continue
		}
		c.Bondings[name] = attrs
	}
}

func isRemove(attrs map[string]any) bool {
	remove, _ := attrs["remove"].(bool)
	return remove
}
