package run

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/projecteru2/core/log"
	coretypes "github.com/projecteru2/core/types"
	"github.com/urfave/cli/v2"

	"github.com/projecteru2/yanet/configs"
	"github.com/projecteru2/yanet/internal/manager"
)

var runtime Runtime

// Runner .
type Runner func(*cli.Context, Runtime) error

// Runtime .
type Runtime struct {
	ConfigFiles []string
	Manager     *manager.Manager
}

// Run .
func Run(fn Runner) cli.ActionFunc {
	return func(c *cli.Context) error {
		runtime.ConfigFiles = c.StringSlice("config")
		if err := setup(); err != nil {
			return errors.Wrap(err, "")
		}
		runtime.Manager = manager.New(nil)

		return fn(c, runtime)
	}
}

func setup() error {
	if len(runtime.ConfigFiles) > 0 {
		if err := configs.Conf.Load(runtime.ConfigFiles); err != nil {
			return errors.Wrap(err, "")
		}
	}

	return log.SetupLog(context.TODO(), &coretypes.ServerLogConfig{
		Level:    configs.Conf.LogLevel,
		Filename: configs.Conf.LogFile,
	}, configs.Conf.LogSentry)
}
