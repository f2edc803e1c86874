// Package client defines the configuration of the sessionclient
// executable: directory endpoints, the identity key pair, and the
// local database location.
package client

import (
	"github.com/Hu-Wenqiang/session-android-service/application"
	"github.com/Hu-Wenqiang/session-android-service/crypto/sign"
	"github.com/Hu-Wenqiang/session-android-service/protocol"
)

// Production and debug directory endpoints. Which one is used is
// selected by the Debug flag in the config file.
const (
	DefaultServer = "https://file.getsession.org"
	DebugServer   = "https://file-dev.getsession.org"
)

// Config maintains the client's configuration: the directory
// server selection, the path of the identity signing key, and the
// device-link database directory.
type Config struct {
	*application.CommonConfig

	Server      string `toml:"server"`
	DebugServer string `toml:"debug_server,omitempty"`
	Debug       bool   `toml:"debug,omitempty"`

	SigningKeyPath string `toml:"signing_key"`
	DBPath         string `toml:"db_path"`
}

var _ application.AppConfig = (*Config)(nil)

// NewConfig initializes a new client configuration at the given
// file path, with the given signing key path and database path.
func NewConfig(file, encoding, signingKeyPath, dbPath string,
	logger *application.LoggerConfig) *Config {
	return &Config{
		CommonConfig:   application.NewCommonConfig(file, encoding, logger),
		Server:         DefaultServer,
		DebugServer:    DebugServer,
		SigningKeyPath: signingKeyPath,
		DBPath:         dbPath,
	}
}

// Load initializes the client's configuration from the given file
// using the given encoding.
func (conf *Config) Load(file, encoding string) error {
	conf.CommonConfig = application.NewCommonConfig(file, encoding, nil)
	return conf.GetLoader().Decode(conf)
}

// Save writes the client's configuration.
func (conf *Config) Save() error {
	return conf.GetLoader().Encode(conf)
}

// GetPath returns the client's configuration file path.
func (conf *Config) GetPath() string {
	return conf.Path
}

// DirectoryServer returns the configured directory endpoint,
// honoring the debug flag.
func (conf *Config) DirectoryServer() string {
	if conf.Debug && conf.DebugServer != "" {
		return conf.DebugServer
	}
	return conf.Server
}

// LoadIdentity loads the signing key referenced by the config and
// derives the public identity key from it.
func (conf *Config) LoadIdentity() (sign.PrivateKey, protocol.PublicKey, error) {
	key, err := application.LoadSigningKey(conf.SigningKeyPath, conf.Path)
	if err != nil {
		return nil, "", err
	}
	pk, _ := key.Public()
	return key, protocol.PublicKey(pk.Hex()), nil
}
