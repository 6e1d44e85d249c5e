package config

import (
	"flag"
	"strings"

	"github.com/dmitrijs2005/flowcross/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
// Only the flags listed here are considered; see flagx.FilterArgs.
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-s", "-d", "-r", "-b", "-l", "-k"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.StorageDriver, "s", cfg.StorageDriver, "storage driver: sqlite, postgres, redis, memory")
	fs.StringVar(&cfg.StorageDSN, "d", cfg.StorageDSN, "storage DSN")
	fs.StringVar(&cfg.RedisAddr, "r", cfg.RedisAddr, "redis address")
	fs.StringVar(&cfg.LogBackend, "b", cfg.LogBackend, "log backend: slog, zap, zerolog")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	brokers := fs.String("k", strings.Join(cfg.KafkaBrokers, ","), "comma-separated kafka brokers")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.KafkaBrokers = splitList(*brokers)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
