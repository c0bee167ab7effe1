// Package config loads runtime configuration for the launcher CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. A .env file in the working directory plus the process
//     environment (see parseEnv). Credentials live here.
//  3. Optional JSON file (see parseJson) selected via flags: -c or
//     -config. Endpoints and preferences live here.
//  4. Command-line flags (see parseFlags), which override earlier
//     values.
//
// Supported flags
//
//	-d string   data directory for the token vault and cache
//	-t int      backend HTTP timeout (seconds)
//
// # JSON schema
//
// The JSON loader uses timex.Duration for timeouts, so values can be
// either strings like "30s" or integer nanoseconds:
//
//	{
//	  "data_dir": "~/.launchdeck",
//	  "http_timeout": "30s",
//	  "shortcuts": {"namespaces": ["o", "de"], "github_user": "ann"}
//	}
//
// Secrets are read only from the environment layer, never from JSON:
// LAUNCHDECK_TASKS_TOKEN, LAUNCHDECK_REGISTRAR_API_KEY,
// LAUNCHDECK_REGISTRAR_SECRET_KEY, LAUNCHDECK_DEPLOY_TOKEN,
// LAUNCHDECK_NOTES_APP_KEY and the per-backend OAuth client ids.
package config
