// Package config resolves hellobench's performance configuration.
//
// # Configuration Precedence
//
// Values are resolved in the following order (highest to lowest priority):
//
//  1. CLI flags (--concurrent-limit, --batch-size, --profile, --environment, ...)
//  2. Environment variables (PERF_*, ENVIRONMENT, DEBUG, VERBOSE_LOGGING, NO_COLOR),
//     with ./.env filling in variables the process environment lacks
//  3. YAML config file (.hellobench.yaml in the working directory or
//     ~/.config/hellobench/.hellobench.yaml)
//  4. Environment preset selected by ENVIRONMENT (development, staging, production)
//  5. Hardcoded defaults
//
// Every value remembers the layer that supplied it; `perfbench config`
// prints them.
//
// # Environment Variables
//
// Booleans accept true, 1, yes or on. A malformed number in the environment
// is ignored and the lower layer's value stays. Malformed values in the YAML
// file or on the command line are errors wrapping ErrInvalidConfig.
package config
