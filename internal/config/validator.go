// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// `internal/config/loader.go` calls `validateStruct` immediately after it
// unmarshals the merged Koanf tree into a `Config` instance.  Any tag
// mismatch or validation error aborts startup, ensuring the binary never
// runs with partial, malformed, or missing configuration.
//
// Field rules live on the struct tags in model.go.  The one cross-section
// rule, "some product source must exist", is registered here as a struct
// validator because tags cannot reach across sections.
//
// Notes
// -----
//   • Oxford commas, two spaces after periods.
//   • Section dividers use the simple comment style requested.

package config

import "github.com/go-playground/validator/v10"

//
// validator instance (package-level singleton)
//

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New()
	val.RegisterStructValidation(productSource, Config{})
	return val
}

// productSource requires database.dsn or api.base_url.
func productSource(sl validator.StructLevel) {
	c := sl.Current().Interface().(Config)
	if c.Database.DSN == "" && c.API.BaseURL == "" {
		sl.ReportError(c.Database.DSN, "Database.DSN", "DSN", "required_without_api", "")
	}
}

//
// public API
//

// validateStruct returns the first validation error, or nil on success.
func validateStruct(c *Config) error {
	return v.Struct(c)
}
