package config

import "time"

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{level: level, format: format, output: output}
}

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend, sqlitePath string, autoMigrate bool) *Repository {
	return &Repository{backend: backend, sqlitePath: sqlitePath, autoMigrate: autoMigrate}
}

// NewStorageForTest creates a Storage config for testing purposes
func NewStorageForTest(backend, bucket string) *Storage {
	return &Storage{backend: backend, bucket: bucket}
}

// NewAuthForTest creates an Auth config for testing purposes
func NewAuthForTest(secret string, ttl time.Duration, noAuthEmail string) *Auth {
	return &Auth{secret: secret, tokenTTL: ttl, noAuthEmail: noAuthEmail}
}

// NewSlackForTest creates a Slack config for testing purposes
func NewSlackForTest(botToken, fallbackChannel string) *Slack {
	return &Slack{botToken: botToken, fallbackChannel: fallbackChannel}
}

// NewPolicyForTest creates a Policy config for testing purposes
func NewPolicyForTest(path string) *Policy {
	return &Policy{path: path}
}
