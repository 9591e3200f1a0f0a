// Package utils exposes reusable helpers consumed by multiple commands.
//
// ConfigurationLoader layers embedded defaults, configuration files and
// REPOSCAN_ environment overrides through Viper. LoggerFactory builds the zap
// loggers every command writes its diagnostics to.
package utils
