/*
Package config defines the queryflow settings surface and loads it from
YAML or JSON files.

# Overview

Settings is a flat, typed struct covering the warehouse connection, the
model, pipeline limits and the cache/schema TTLs. Loading starts from
Defaults and lets a config file override individual fields, so a partial
file is always valid:

	settings, err := config.FromFile("queryflow.yaml")
	if err != nil {
	    log.Fatal(err)
	}

# Precedence

Values are resolved lowest to highest:

 1. Defaults()
 2. the config file (only the keys it sets)
 3. environment variables (QUERYFLOW_DB, QUERYFLOW_MODEL)

FromFile applies all three and validates the result. FromYAML and
FromJSON stop after step 2 so tests and embedders control the
environment themselves.

# Durations

Duration fields accept several YAML/JSON spellings:
  - string: parsed with time.ParseDuration ("30s", "1h30m")
  - integer: interpreted as seconds
  - float: interpreted as seconds

So `query_timeout: 300` and `query_timeout: "5m"` are equivalent.
A non-positive TTL disables expiry for that store.

# File Loading

The file format is detected by extension: .yaml, .yml or .json,
case-insensitive. Anything else is an error.
*/
package config
