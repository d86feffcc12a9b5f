// ABOUTME: Validation of loaded configuration values
// ABOUTME: Collects every bad key so a misconfigured start reports them all at once
package config

import (
	"errors"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/harperreed/dealboard/models"
)

var (
	validBackends  = []string{BackendSQL, BackendMemory, BackendKV}
	validDrivers   = []string{"sqlite3", "pgx"}
	validLogLevels = []string{"debug", "info", "warn", "error"}
	validFormats   = []string{"text", "json", "logfmt"}
)

// Validate reports every invalid key as a models.ValidationErrors.
func (c *Config) Validate() error {
	errs := models.ValidationErrors{}

	if !slices.Contains(validBackends, c.Store.Backend) {
		errs["store.backend"] = "must be one of " + strings.Join(validBackends, ", ")
	}
	if c.Store.Backend == BackendSQL {
		if !slices.Contains(validDrivers, c.DB.Driver) {
			errs["db.driver"] = "must be one of " + strings.Join(validDrivers, ", ")
		}
		if c.DB.Driver == "pgx" && c.DB.DSN == "" {
			errs["db.dsn"] = "is required for the pgx driver"
		}
		if c.DB.Driver == "sqlite3" && c.DB.Path == "" {
			errs["db.path"] = "is required for the sqlite3 driver"
		}
	}
	if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
		errs["http.port"] = "must be between 1 and 65535"
	}
	if !slices.Contains(validLogLevels, strings.ToLower(c.Log.Level)) {
		errs["log.level"] = "must be one of " + strings.Join(validLogLevels, ", ")
	}
	if c.Log.Format != "" && !slices.Contains(validFormats, c.Log.Format) {
		errs["log.format"] = "must be one of " + strings.Join(validFormats, ", ")
	}
	if c.Export.S3.Bucket != "" && c.Export.S3.Region == "" {
		errs["export.s3.region"] = "is required when a bucket is set"
	}

	return errs.OrNil()
}

func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || os.IsNotExist(err)
}
