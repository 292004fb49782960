package configs

import (
	"fmt"
	"time"
)

// Duration wraps time.Duration with TOML text codec support.
type Duration time.Duration

// Duration .
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// UnmarshalText .
func (d *Duration) UnmarshalText(text []byte) error {
	dur, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// MarshalText renders with the coarsest unit that divides evenly.
func (d Duration) MarshalText() ([]byte, error) {
	if d == 0 {
		return []byte("0"), nil
	}

	dur := time.Duration(d)
	if dur < 0 {
		dur = -dur
	}

	units := []struct {
		div    time.Duration
		suffix string
	}{
		{time.Hour, "h"},
		{time.Minute, "m"},
		{time.Second, "s"},
		{time.Millisecond, "ms"},
	}
	for _, u := range units {
		if dur%u.div == 0 {
			return []byte(fmt.Sprintf("%d%s", dur/u.div, u.suffix)), nil
		}
	}
	return []byte(dur.String()), nil
}
