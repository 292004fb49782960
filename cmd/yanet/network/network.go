package network

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v2"

	"github.com/projecteru2/yanet/cmd/yanet/run"
)

// Command .
func Command() *cli.Command {
	return &cli.Command{
		Name: "network",
		Subcommands: []*cli.Command{
			{
				Name:      "setup",
				Usage:     "apply a batch of legacy network and bonding entries",
				ArgsUsage: "<request.json | ->",
				Action:    run.Run(setup),
			},
			{
				Name:      "generate",
				Usage:     "print the desired state for a batch without applying it",
				ArgsUsage: "<request.json | ->",
				Action:    run.Run(generate),
			},
			{
				Name:   "show",
				Usage:  "print the live network state",
				Action: run.Run(show),
			},
			{
				Name:   "report",
				Usage:  "print the legacy view of the persisted networks",
				Action: run.Run(report),
			},
		},
	}
}

type setupRequest struct {
	Networks map[string]map[string]any `json:"networks"`
	Bondings map[string]map[string]any `json:"bondings"`
}

func loadRequest(c *cli.Context) (*setupRequest, error) {
	path := c.Args().First()
	if path == "" {
		return nil, errors.New("request file required")
	}

	var (
		buf []byte
		err error
	)
	if path == "-" {
		buf, err = io.ReadAll(os.Stdin)
	} else {
		buf, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, errors.Wrap(err, "")
	}

	req := &setupRequest{}
	if err := json.Unmarshal(buf, req); err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	return req, nil
}

func setup(c *cli.Context, rt run.Runtime) error {
	req, err := loadRequest(c)
	if err != nil {
		return err
	}
	return rt.Manager.Setup(c.Context, req.Networks, req.Bondings)
}

func generate(c *cli.Context, rt run.Runtime) error {
	req, err := loadRequest(c)
	if err != nil {
		return err
	}

	doc, err := rt.Manager.Generate(c.Context, req.Networks, req.Bondings)
	if err != nil {
		return err
	}
	fmt.Println(string(doc))

	return nil
}

func show(c *cli.Context, rt run.Runtime) error {
	doc, err := rt.Manager.Show(c.Context)
	if err != nil {
		return err
	}
	fmt.Println(string(doc))

	return nil
}

func report(c *cli.Context, rt run.Runtime) error {
	rep, err := rt.Manager.Report(c.Context)
	if err != nil {
		return err
	}

	buf, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return errors.Wrap(err, "")
	}
	fmt.Println(string(buf))

	return nil
}
