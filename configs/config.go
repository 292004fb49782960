package configs

import (
	"os"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/mcuadros/go-defaults"
)

// DefaultTemplate .
const DefaultTemplate = `
env = "dev"
log_level = "info"

running_config_path = "/var/lib/yanet/running-config.json"
verify_changes = true

[nmstate]
show_timeout = "45s"
apply_timeout = "80s"
show_retry_interval = "2s"
`

// Conf .
var Conf = newDefault()

// Config .
type Config struct {
	Env string `toml:"env"`

	LogLevel  string `toml:"log_level"`
	LogFile   string `toml:"log_file"`
	LogSentry string `toml:"log_sentry"`

	RunningConfigPath string `toml:"running_config_path"`
	VerifyChanges     bool   `toml:"verify_changes"`

	Nmstate NmstateConfig `toml:"nmstate"`
}

// NmstateConfig .
type NmstateConfig struct {
	BinPath           string   `toml:"bin_path" default:"nmstatectl"`
	ShowTimeout       Duration `toml:"show_timeout"`
	ApplyTimeout      Duration `toml:"apply_timeout"`
	ShowRetries       int      `toml:"show_retries" default:"3"`
	ShowRetryInterval Duration `toml:"show_retry_interval"`
}

func newDefault() Config {
	var conf Config
	defaults.SetDefaults(&conf)
	if err := Decode(DefaultTemplate, &conf); err != nil {
		panic(err)
	}
	return conf
}

// Dump .
func (c *Config) Dump() (string, error) {
	return Encode(c)
}

// Load .
func (c *Config) Load(files []string) error {
	for _, path := range files {
		if err := DecodeFile(path, c); err != nil {
			return errors.Wrapf(err, "%s", path)
		}
	}
	return nil
}

var (
	hostname     string
	hostnameOnce sync.Once
)

// Hostname is resolved once; metric labels must stay stable for the
// process lifetime.
func Hostname() string {
	hostnameOnce.Do(func() {
		hostname, _ = os.Hostname()
	})
	return hostname
}
