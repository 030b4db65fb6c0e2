package main

import (
	"context"

	"github.com/pixil98/go-service"
	"github.com/pixil98/go-zbot/cmd/zbot/command"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := newLogger()

	app, err := service.NewApp(&command.Config{}, command.BuildWorkers)
	if err != nil {
		logger.WithError(err).Fatal("creating application")
	}

	err = app.Run(context.Background())
	if err != nil {
		logger.WithError(err).Fatal("running application")
	}

	logger.Info("exiting")
}

// newLogger returns the logger for failures that happen outside the
// application's own structured logging.
func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return logger
}
