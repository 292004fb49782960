package manager

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/projecteru2/yanet/configs"
	"github.com/projecteru2/yanet/internal/netconf"
)

// Show returns the raw live state document.
func (m *Manager) Show(ctx context.Context) ([]byte, error) {
	buf, err := m.state.Show(ctx)
	if err != nil {
		m.mCol.healthy.Store(false)
		return nil, errors.Wrap(err, "")
	}
	m.mCol.healthy.Store(true)
	return buf, nil
}

// Generate computes the desired document for a batch without applying
// it, for dry runs and debugging.
func (m *Manager) Generate(ctx context.Context, nets, bonds map[string]map[string]any) ([]byte, error) {
	running, err := netconf.LoadRunningConfig(configs.Conf.RunningConfigPath)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}

	current, err := m.GetCurrentState(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}

	desired, err := GenerateState(nets, bonds, running, current)
	if err != nil {
		return nil, err
	}
	return desired.Marshal()
}
