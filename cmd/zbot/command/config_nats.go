package command

import (
	"fmt"
	"regexp"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-zbot/internal/messaging"
)

var subjectPrefixPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+(\.[A-Za-z0-9_-]+)*$`)

type NatsConfig struct {
	Host          string `json:"host"`
	Port          int    `json:"port"`
	StartTimeout  string `json:"start_timeout"`
	SubjectPrefix string `json:"subject_prefix"`
}

func (n *NatsConfig) validate() error {
	el := errors.NewErrorList()

	if n.StartTimeout != "" {
		_, err := time.ParseDuration(n.StartTimeout)
		if err != nil {
			el.Add(fmt.Errorf("nats: parsing start_timeout: %w", err))
		}
	}
	if n.Port < -1 || n.Port > 65535 {
		el.Add(fmt.Errorf("nats: port %d is out of range", n.Port))
	}
	if n.SubjectPrefix != "" && !subjectPrefixPattern.MatchString(n.SubjectPrefix) {
		el.Add(fmt.Errorf("nats: subject_prefix %q is not a valid subject", n.SubjectPrefix))
	}

	return el.Err()
}

func (c *NatsConfig) buildNatsServer() (*messaging.NatsServer, error) {
	var opts []messaging.NatsServerOpt
	if c.StartTimeout != "" {
		d, err := time.ParseDuration(c.StartTimeout)
		if err != nil {
			return nil, fmt.Errorf("parsing start_timeout: %w", err)
		}
		opts = append(opts, messaging.WithStartTimeout(d))
	}
	if c.Host != "" {
		opts = append(opts, messaging.WithHost(c.Host))
	}
	if c.Port != 0 {
		opts = append(opts, messaging.WithPort(c.Port))
	}

	s, err := messaging.NewNatsServer(opts...)
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (c *NatsConfig) buildGateway(s *messaging.NatsServer, h messaging.Handler) *messaging.Gateway {
	var opts []messaging.GatewayOpt
	if c.SubjectPrefix != "" {
		opts = append(opts, messaging.WithSubjectPrefix(c.SubjectPrefix))
	}
	return messaging.NewGateway(s, h, opts...)
}
