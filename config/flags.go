package config

import "flag"

type flagValues struct {
	configFile *string
	addr       *string
	backend    *string
	dsn        *string
	table      *string
	logLevel   *string
	logFormat  *string
	cors       *string
}

func registerFlags(fs *flag.FlagSet) *flagValues {
	return &flagValues{
		configFile: fs.String("config", "", "Path to a TOML config file"),
		addr:       fs.String("addr", "", "Listen address (default 127.0.0.1:8081)"),
		backend:    fs.String("backend", "", "Storage backend: sqlite, mysql, memory or dynamodb"),
		dsn:        fs.String("dsn", "", "Data source name for sqlite or mysql"),
		table:      fs.String("table", "", "Relational table name"),
		logLevel:   fs.String("log-level", "", "Log level: debug, info, warn or error"),
		logFormat:  fs.String("log-format", "", "Log format: console or json"),
		cors:       fs.String("cors-origins", "", "Comma separated origins allowed by CORS"),
	}
}

// applyFlags copies only the flags the user actually set
func applyFlags(cfg *Config, fs *flag.FlagSet, f *flagValues) {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "addr":
			cfg.Addr = *f.addr
		case "backend":
			cfg.Backend = *f.backend
		case "dsn":
			cfg.DSN = *f.dsn
		case "table":
			cfg.Table = *f.table
		case "log-level":
			cfg.LogLevel = *f.logLevel
		case "log-format":
			cfg.LogFormat = *f.logFormat
		case "cors-origins":
			cfg.CORSOrigins = splitList(*f.cors)
		}
	})
}
