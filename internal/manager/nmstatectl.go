package manager

import (
	"bytes"
	"context"
	"io"
	"os/exec"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cockroachdb/errors"
	"github.com/projecteru2/core/log"

	"github.com/projecteru2/yanet/configs"
	"github.com/projecteru2/yanet/pkg/terrors"
)

// NmstateCtl is the default StateManager, shelling out to the
// nmstatectl binary.
type NmstateCtl struct {
	bin           string
	showTimeout   time.Duration
	applyTimeout  time.Duration
	showRetries   int
	retryInterval time.Duration
}

// NewNmstateCtl .
func NewNmstateCtl() *NmstateCtl {
	return &NmstateCtl{
		bin:           configs.Conf.Nmstate.BinPath,
		showTimeout:   configs.Conf.Nmstate.ShowTimeout.Duration(),
		applyTimeout:  configs.Conf.Nmstate.ApplyTimeout.Duration(),
		showRetries:   configs.Conf.Nmstate.ShowRetries,
		retryInterval: configs.Conf.Nmstate.ShowRetryInterval.Duration(),
	}
}

// Show dumps the live state as JSON. The daemon refuses queries while a
// checkpoint is pending, so failed shows retry on a constant interval.
func (n *NmstateCtl) Show(ctx context.Context) ([]byte, error) {
	var out []byte
	bf := backoff.NewConstantBackOff(n.retryInterval)
	err := backoff.Retry(func() error {
		var err error
		out, err = n.run(ctx, n.showTimeout, nil, "show", "--json")
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(bf, uint64(n.showRetries)), ctx))
	if err != nil {
		return nil, errors.Wrapf(terrors.ErrStateShow, "%s", err)
	}
	return out, nil
}

// Apply feeds the desired document to nmstatectl on stdin.
func (n *NmstateCtl) Apply(ctx context.Context, doc []byte, verify bool) error {
	args := []string{"apply"}
	if !verify {
		args = append(args, "--no-verify")
	}
	if _, err := n.run(ctx, n.applyTimeout, bytes.NewReader(doc), args...); err != nil {
		return errors.Wrapf(terrors.ErrStateApply, "%s", err)
	}
	return nil
}

func (n *NmstateCtl) run(ctx context.Context, timeout time.Duration, stdin io.Reader, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, n.bin, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Stdin = stdin

	if err := cmd.Run(); err != nil {
		log.WithFunc("manager.run").Debugf(ctx, "%s %v: %s", n.bin, args, stderr.String())
		return nil, errors.Wrap(err, stderr.String())
	}
	return stdout.Bytes(), nil
}
