// Package config resolves CLI settings from the environment and an
// optional config file.
package config

import "time"

type Config interface {
	AppName() string
	BaseURL() string
	DataFolder() string
	Timeout() time.Duration
	Verbose() bool
}
