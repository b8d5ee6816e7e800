// Package config loads typed configuration from environment variables.
//
// A .env file in the working directory is read once on first use; variables
// already present in the environment win. Parsing is done by caarlos0/env,
// so struct fields are described with env tags:
//
//	type Server struct {
//		Addr string `env:"ADDR" envDefault:":8080"`
//	}
//
//	var cfg Server
//	if err := config.Load(&cfg); err != nil {
//		log.Fatal(err)
//	}
//
// Load caches one value per type, so repeated calls are cheap and return the
// same configuration. Parse skips both the cache and the .env file and reads
// from an explicit variable map, which is what tests use.
//
// App describes the variables the malaria info server understands.
package config
