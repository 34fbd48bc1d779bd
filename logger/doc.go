// Package logger provides structured logging over zerolog.
//
// It supports JSON and console output, level configuration and
// component-scoped loggers with structured fields.
//
//	logging:
//	  level: "info"
//	  format: "json"
//
//	log := logger.WithComponent("signin")
//	log.Info("Sign-in succeeded", map[string]interface{}{"username": name})
package logger
