package command

import (
	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-zbot/internal/driver"
	"github.com/pixil98/go-zbot/internal/session"
)

type JanitorConfig struct {
	Interval string `json:"interval"`
	MaxAge   string `json:"max_age"`
}

func (c *JanitorConfig) validate() error {
	el := errors.NewErrorList()

	_, err := parseDuration("janitor: interval", c.Interval, driver.DefaultTickLength)
	el.Add(err)
	_, err = parseDuration("janitor: max_age", c.MaxAge, driver.DefaultMaxAge)
	el.Add(err)

	return el.Err()
}

// BuildDriver returns a driver that sweeps stale scratch files out of
// scratchDir.
func (c *JanitorConfig) BuildDriver(scratchDir string) (*driver.Driver, error) {
	interval, err := parseDuration("janitor: interval", c.Interval, driver.DefaultTickLength)
	if err != nil {
		return nil, err
	}
	maxAge, err := parseDuration("janitor: max_age", c.MaxAge, driver.DefaultMaxAge)
	if err != nil {
		return nil, err
	}

	d := driver.NewDriver([]driver.Manager{
		driver.NewJanitor(scratchDir, maxAge, session.IsScratchFile),
	}, driver.WithTickLength(interval))

	return d, nil
}
