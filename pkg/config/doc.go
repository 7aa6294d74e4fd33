// Package config loads environment variables into tagged structs. A .env
// file, when present, is loaded once per process before the first parse.
//
//	type AppConfig struct {
//		Addr  string `env:"HTTP_ADDR" envDefault:":8080"`
//		Debug bool   `env:"DEBUG" envDefault:"false"`
//	}
//
//	var cfg AppConfig
//	if err := config.Load(&cfg); err != nil {
//		// handle error
//	}
//
// MustLoad panics on failure, for configuration the process cannot start
// without.
package config
