package config

import (
	"errors"

	"github.com/vnykmshr/skitter/internal/domain"
)

// Configuration errors.
var (
	ErrConfigNotFound     = errors.New("no configuration file found")
	ErrMissingEnvVar      = errors.New("missing required environment variables")
	ErrInvalidRootURL     = errors.New("invalid root URL")
	ErrInvalidMaxDuration = errors.New("invalid max duration")

	// ErrNoRootURL is reported when neither the file nor the flags set a root URL.
	ErrNoRootURL = domain.ErrNoRootURL
)
