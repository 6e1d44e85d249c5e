// Package config loads runtime configuration for the FlowCross client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. A .env file in the working directory, if present (exported into the
//     process environment, never overriding variables already set).
//  3. Optional config file selected with -c or -config. JSON and YAML are
//     both accepted; the format follows the file extension.
//  4. Environment variables FLOWCROSS_<KEY>, e.g. FLOWCROSS_STORAGE_DRIVER.
//  5. Command-line flags, which override everything else.
//
// Supported flags
//
//	-s string   storage driver: sqlite, postgres, redis, memory
//	-d string   storage DSN (SQLite file path or Postgres URL)
//	-r string   redis address
//	-b string   log backend: slog, zap, zerolog
//	-l string   log level: debug, info, warn, error
//	-k string   comma-separated Kafka brokers for session events
//
// # File schema
//
// Keys are the mapstructure tags of Config. Durations accept strings such
// as "1500ms":
//
//	storage_driver: sqlite
//	storage_dsn: flowcross.db
//	log_backend: zap
//	avatar_backend: s3
//	s3_bucket: flowcross-avatars
//	phone_verify_delay: 2s
//	kafka_brokers: [localhost:9092]
package config
