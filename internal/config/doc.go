// Package config provides configuration management for docsearch using Viper.
//
// # Configuration File
//
// Configuration is read from config.yaml in the current directory or in
// the docsearch config directory (~/.config/docsearch, or
// $DOCSEARCH_CONFIG_DIR when set):
//
//	version: 1
//	search:
//	  limit: 50
//	  min_fuzzy_length: 2
//	  parallel_threshold: 4096
//	index:
//	  max_size: 33554432
//	serve:
//	  watch: false
//	  debounce: 250ms
//	  metrics_addr: ""
//
// Every key can be overridden from the environment with the DOCSEARCH_
// prefix and dots replaced by underscores, e.g. DOCSEARCH_SEARCH_LIMIT=10.
//
// # Loading Configuration
//
// Call [Init] once at startup, then [Load]:
//
//	config.Init()
//	cfg, err := config.Load("")
//
// A missing file is not an error when no explicit path is given; defaults
// apply. Use [Validate] to check the result.
package config
