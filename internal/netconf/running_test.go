package netconf

import (
	"path/filepath"
	"testing"

	"github.com/projecteru2/yanet/pkg/test/assert"
)

func TestLoadRunningConfigMissing(t *testing.T) {
	cfg, err := LoadRunningConfig(filepath.Join(t.TempDir(), "nope.json"))
	assert.NilErr(t, err)
	assert.Len(t, cfg.Networks, 0)
	assert.Len(t, cfg.Bondings, 0)
}

func TestRunningConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "running-config.json")

	cfg := NewRunningConfig()
	cfg.Update(
		map[string]map[string]any{
			"net1": {"nic": "eth0", "bridged": true},
		},
		map[string]map[string]any{
			"bond0": {"nics": []any{"eth1", "eth2"}},
		},
	)
	assert.NilErr(t, cfg.Save(path))

	loaded, err := LoadRunningConfig(path)
	assert.NilErr(t, err)
	assert.Len(t, loaded.Networks, 1)
	assert.Len(t, loaded.Bondings, 1)

	nets, err := loaded.NetworkConfigs()
	assert.NilErr(t, err)
	assert.Equal(t, "eth0", nets["net1"].Nic)
	assert.True(t, nets["net1"].Bridged)
}

func TestRunningConfigUpdateRemoves(t *testing.T) {
	cfg := NewRunningConfig()
	cfg.Update(
		map[string]map[string]any{"net1": {"nic": "eth0"}},
		map[string]map[string]any{"bond0": {"nics": []any{"eth1"}}},
	)

	cfg.Update(
		map[string]map[string]any{"net1": {"remove": true}},
		map[string]map[string]any{"bond0": {"remove": true}},
	)
	assert.Len(t, cfg.Networks, 0)
	assert.Len(t, cfg.Bondings, 0)
}
