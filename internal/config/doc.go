// Package config loads the macro service configuration.
//
// Sources, lowest precedence first:
//
//  1. Default()
//  2. config.yaml or configs/config.yaml
//  3. MACRO_* environment variables (a .env file is read first)
//
// For example MACRO_SERVER_PORT=9000 or MACRO_BATCH_WORKERS=8.
//
// Channel account mappings can be overridden per channel in channels.yaml,
// see LoadChannels.
package config
