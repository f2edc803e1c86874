package application

import (
	"fmt"
	"io/ioutil"

	"github.com/Hu-Wenqiang/session-android-service/crypto/sign"
	"github.com/Hu-Wenqiang/session-android-service/utils"
)

// AppConfig provides an abstraction of the
// underlying encoding format for the configs.
type AppConfig interface {
	Load(file, encoding string) error
	Save() error
	GetPath() string
}

// CommonConfig is the generic type used to specify the
// configuration of any session-android-service executable.
// It contains some common configuration values including the
// file path, logger configuration, and config loader.
type CommonConfig struct {
	Path     string
	Logger   *LoggerConfig `toml:"logger"`
	Encoding string
	loader   ConfigLoader
}

// NewCommonConfig initializes an application's config file path,
// its loader for the given encoding, and the logger configuration.
// Note: This constructor must be called in each Load() method
// implementation of an AppConfig.
func NewCommonConfig(file, encoding string, logger *LoggerConfig) *CommonConfig {
	return &CommonConfig{
		Path:     file,
		Logger:   logger,
		Encoding: encoding,
		loader:   newConfigLoader(encoding),
	}
}

// GetLoader returns the config's loader.
func (conf *CommonConfig) GetLoader() ConfigLoader {
	return conf.loader
}

// LoadSigningKey loads the identity's private signing key at the
// given path specified in the given config file.
// If there is any parsing error or the key is malformed,
// LoadSigningKey() returns an error with a nil key.
func LoadSigningKey(path, file string) (sign.PrivateKey, error) {
	keyPath := utils.ResolvePath(path, file)
	key, err := ioutil.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("Cannot read signing key: %v", err)
	}
	if len(key) != sign.PrivateKeySize {
		return nil, fmt.Errorf("Signing key must be 64 bytes (got %d)", len(key))
	}
	return sign.PrivateKey(key), nil
}
