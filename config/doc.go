// Package config loads service configuration with Viper.
//
// LoadConfig resolves a config.yml and an optional .env file from the
// usual locations (cmd/<service>/, config/, the working directory), then
// overlays environment variables. AUTH_TOKEN_SECRET binds to
// auth.token.secret, SERVER_PORT to server.port and so on. With
// WithEnvPrefix only variables carrying that prefix are considered.
//
// Load additionally runs ApplyDefaults and Validate on the result:
//
//	var cfg app.Config
//	if err := config.Load("tokengate", &cfg); err != nil {
//	    log.Fatal(err)
//	}
package config
