// Package validation validates configuration structs with go-playground
// validator tags and reports failures as INVALID_INPUT errors.
//
//	type Config struct {
//	    MaxConcurrency int    `mapstructure:"max_concurrency" validate:"gte=0"`
//	    Level          string `mapstructure:"level" validate:"oneof=debug info warn error"`
//	}
//	err := validation.Validate(&cfg)
//
// Field names in messages follow the mapstructure tag, then the json tag,
// then the snake_cased Go field name.
package validation
