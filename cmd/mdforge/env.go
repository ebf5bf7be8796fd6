package main

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now    func() time.Time
	Stdout io.Writer
	Stderr io.Writer
	Log    *logrus.Logger
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return &Environment{
		Now:    time.Now,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Log:    log,
	}
}

// configureLogging adjusts log verbosity from the common flags.
func configureLogging(env *Environment, f commonFlags) {
	switch {
	case f.quiet:
		env.Log.SetLevel(logrus.ErrorLevel)
	case f.verbose:
		env.Log.SetLevel(logrus.DebugLevel)
	default:
		env.Log.SetLevel(logrus.InfoLevel)
	}
}
