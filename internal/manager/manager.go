// Package manager ties the translation pipeline together: it decodes a
// legacy batch, reads the live state through the nmstate backend,
// generates the desired declarative document and applies it in a single
// transaction.
package manager

import (
	"context"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/projecteru2/core/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/projecteru2/yanet/configs"
	"github.com/projecteru2/yanet/internal/netconf"
	"github.com/projecteru2/yanet/internal/nmstate"
	"github.com/projecteru2/yanet/internal/ovsinfo"
	"github.com/projecteru2/yanet/internal/state"
)

// StateManager abstracts the nmstate backend so orchestration can be
// tested without a live daemon.
type StateManager interface {
	Show(ctx context.Context) ([]byte, error)
	Apply(ctx context.Context, doc []byte, verify bool) error
}

// Manager .
type Manager struct {
	state StateManager
	mCol  *MetricsCollector
}

// New builds a Manager; a nil backend falls back to the nmstatectl
// binary configured in configs.Conf.
func New(sm StateManager) *Manager {
	if sm == nil {
		sm = NewNmstateCtl()
	}
	return &Manager{
		state: sm,
		mCol:  &MetricsCollector{},
	}
}

// GetMetricsCollector .
func (m *Manager) GetMetricsCollector() prometheus.Collector {
	return m.mCol
}

// GetCurrentState reads the live state once and indexes it. Every
// operation works against this single snapshot.
func (m *Manager) GetCurrentState(ctx context.Context) (*state.CurrentState, error) {
	buf, err := m.Show(ctx)
	if err != nil {
		return nil, err
	}

	doc, err := nmstate.Unmarshal(buf)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return state.ParseCurrentState(doc), nil
}

// Setup generates the desired state for one batch of legacy network and
// bonding entries, applies it in one shot, and on success folds the
// batch into the persisted running config.
func (m *Manager) Setup(ctx context.Context, nets, bonds map[string]map[string]any) error {
	logger := log.WithFunc("manager.Setup")

	running, err := netconf.LoadRunningConfig(configs.Conf.RunningConfigPath)
	if err != nil {
		return errors.Wrap(err, "")
	}

	current, err := m.GetCurrentState(ctx)
	if err != nil {
		return errors.Wrap(err, "")
	}

	desired, err := GenerateState(nets, bonds, running, current)
	if err != nil {
		return errors.Wrap(err, "")
	}

	doc, err := desired.Marshal()
	if err != nil {
		return errors.Wrap(err, "")
	}
	logger.Debugf(ctx, "desired state: %s", doc)

	m.mCol.applyTotal.Add(1)
	if err := m.state.Apply(ctx, doc, configs.Conf.VerifyChanges); err != nil {
		m.mCol.applyFails.Add(1)
		logger.Errorf(ctx, err, "failed to apply desired state")
		return errors.Wrap(err, "")
	}

	running.Update(nets, bonds)
	return running.Save(configs.Conf.RunningConfigPath)
}

// Report builds the legacy introspection view of the persisted networks
// against the live state.
func (m *Manager) Report(ctx context.Context) (*ovsinfo.Report, error) {
	running, err := netconf.LoadRunningConfig(configs.Conf.RunningConfigPath)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	cfgs, err := running.NetworkConfigs()
	if err != nil {
		return nil, errors.Wrap(err, "")
	}

	current, err := m.GetCurrentState(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return ovsinfo.Build(cfgs, current), nil
}

// GenerateState translates one batch into the desired declarative
// document. The switch path is chosen once per batch: any OVS network
// routes the whole batch through the OVS builder.
func GenerateState(nets, bonds map[string]map[string]any, running *netconf.RunningConfig, current *state.CurrentState) (*nmstate.NetworkState, error) {
	netCfgs, err := canonicalNetworks(nets, running)
	if err != nil {
		return nil, err
	}
	runningCfgs, err := running.NetworkConfigs()
	if err != nil {
		return nil, err
	}

	ovs := false
	for _, cfg := range netCfgs {
		if cfg.Ovs() {
			ovs = true
			break
		}
	}

	ns := state.NewNetState()
	if len(netCfgs) > 0 {
		if ovs {
			err = state.GenerateOvsState(ns, netCfgs, runningCfgs, current)
		} else {
			err = state.GenerateLinuxBridgeState(ns, netCfgs, runningCfgs, current)
		}
		if err != nil {
			return nil, err
		}
	}

	names := make([]string, 0, len(bonds))
	for name := range bonds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		bond, err := netconf.NewBond(name, bonds[name])
		if err != nil {
			return nil, err
		}
		_, existed := running.Bondings[name]
		isNew := !bond.Remove && !existed
		ns.AddBondState(state.BuildBondState(bond, isNew))
	}

	ns.UpdateMTU(current, len(netCfgs) > 0 && !ovs)
	return ns.State(), nil
}

// canonicalNetworks decodes the batch. A removal entry is rebuilt from
// the persisted attributes of the network it removes, so the builders
// always see the full original shape with the remove marker set.
func canonicalNetworks(nets map[string]map[string]any, running *netconf.RunningConfig) (map[string]*netconf.NetworkConfig, error) {
	out := make(map[string]*netconf.NetworkConfig, len(nets))
	for name, attrs := range nets {
		if remove, _ := attrs["remove"].(bool); remove {
			if prev, ok := running.Networks[name]; ok {
				merged := make(map[string]any, len(prev)+1)
				for k, v := range prev {
					merged[k] = v
				}
				merged["remove"] = true
				attrs = merged
			}
		}
		cfg, err := netconf.NewNetworkConfig(name, attrs)
		if err != nil {
			return nil, err
		}
		out[name] = cfg
	}
	return out, nil
}
