// Package config provides configuration management for the router
// daemon.
//
// Configuration is loaded from a YAML file with environment variable
// substitution, validated against the routing table it describes, and
// optionally watched for changes so the daemon can rebuild its routing
// table without a restart.
//
// # Features
//
//   - YAML configuration with ${VAR} and ${VAR:-default} substitution
//   - Defaults merged before parsing, so absent keys keep their
//     documented default values
//   - Validation that registers every declared route against a
//     throwaway dispatcher, catching malformed patterns and duplicate
//     routes before they reach the live routing table
//   - fsnotify-based file watching with debounced reloads
//
// # Usage
//
//	cfg, err := config.LoadConfig("routerd.yaml")
//	if err != nil {
//	    return err
//	}
//	if err := config.ValidateConfig(cfg); err != nil {
//	    return err
//	}
package config
