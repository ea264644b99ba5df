// Package config provides configuration structures and utilities for leadcrawl.
// It defines the crawl limits, network settings, persistence and report
// preferences, plus the optional YAML file with per-site overrides.
package config
