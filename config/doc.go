// Package config loads service configuration with Viper.
//
// Sources, lowest precedence first: config.yml, the config.<env>.yml overlay,
// a .env file loaded with godotenv, then the process environment. Environment
// variables map onto nested keys by underscores, so LOGGING_LEVEL sets
// logging.level and FORKER_MAX_CONCURRENCY sets forker.max_concurrency.
//
//	var cfg AppConfig
//	err := config.Load("menustats", &cfg, config.WithEnvironment("staging"))
//
// Load applies defaults and validates after unmarshalling.
package config
