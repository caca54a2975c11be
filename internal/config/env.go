package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/xo/dburl"
)

// Getenv looks up an environment variable; os.Getenv in production.
type Getenv func(string) string

// ApplyEnv overlays environment variables onto cfg. Unset or unparseable
// values leave the field alone.
func ApplyEnv(cfg *Config, getenv Getenv) {
	str := func(k string, dst *string) {
		if v := strings.TrimSpace(getenv(k)); v != "" {
			*dst = v
		}
	}
	str("ETL_JOB", &cfg.Job)
	str("SOURCE_KIND", &cfg.Source.Kind)
	str("SOURCE_DSN", &cfg.Source.DSN)
	str("SOURCE_URL", &cfg.Source.URL)
	str("WAREHOUSE_KIND", &cfg.Warehouse.Kind)
	str("WAREHOUSE_DSN", &cfg.Warehouse.DSN)
	str("WAREHOUSE_URL", &cfg.Warehouse.URL)
	str("METRICS_BACKEND", &cfg.Metrics.Backend)
	str("PUSHGATEWAY_URL", &cfg.Metrics.PushgatewayURL)
	str("DD_AGENT_ADDR", &cfg.Metrics.DatadogAddr)

	cfg.Runtime.BatchSize = getenvInt(getenv, "ETL_BATCH_SIZE", cfg.Runtime.BatchSize)
	cfg.Warehouse.MaxConns = getenvInt(getenv, "WAREHOUSE_MAX_CONNS", cfg.Warehouse.MaxConns)
	cfg.Runtime.ParallelDimensions = getenvBool(getenv, "ETL_PARALLEL_DIMENSIONS", cfg.Runtime.ParallelDimensions)
	cfg.Warehouse.EnsureSchema = getenvBool(getenv, "WAREHOUSE_ENSURE_SCHEMA", cfg.Warehouse.EnsureSchema)
	cfg.Runtime.StageTimeout = getenvDuration(getenv, "ETL_STAGE_TIMEOUT", cfg.Runtime.StageTimeout)
	cfg.Runtime.BatchTimeout = getenvDuration(getenv, "ETL_BATCH_TIMEOUT", cfg.Runtime.BatchTimeout)
}

// getenvInt reads an int from environment, returning def when unset/invalid.
func getenvInt(getenv Getenv, k string, def int) int {
	if s := getenv(k); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return def
}

func getenvBool(getenv Getenv, k string, def bool) bool {
	if s := getenv(k); s != "" {
		if b, err := strconv.ParseBool(s); err == nil {
			return b
		}
	}
	return def
}

func getenvDuration(getenv Getenv, k string, def Duration) Duration {
	if s := getenv(k); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			return Duration(d)
		}
	}
	return def
}

// Resolve fills Kind and DSN of the source and warehouse from their URLs,
// or from the legacy LOCAL_* / ONLINE_* variables when no DSN is set.
func Resolve(cfg *Config, getenv Getenv) error {
	if cfg.Source.URL != "" {
		kind, dsn, err := ParseURL(cfg.Source.URL)
		if err != nil {
			return fmt.Errorf("source.url: %w", err)
		}
		cfg.Source.Kind, cfg.Source.DSN = kind, dsn
	}
	if cfg.Warehouse.URL != "" {
		kind, dsn, err := ParseURL(cfg.Warehouse.URL)
		if err != nil {
			return fmt.Errorf("warehouse.url: %w", err)
		}
		cfg.Warehouse.Kind, cfg.Warehouse.DSN = kind, dsn
	}
	if cfg.Source.DSN == "" && cfg.Source.Kind == "mysql" {
		cfg.Source.DSN = LocalMySQLDSN(getenv)
	}
	if cfg.Warehouse.DSN == "" && cfg.Warehouse.Kind == "postgres" {
		cfg.Warehouse.DSN = OnlinePostgresDSN(getenv)
	}
	return nil
}

// ParseURL maps a database URL to a kind and driver DSN. Postgres keeps the
// URL form, which pgx parses natively.
func ParseURL(raw string) (kind, dsn string, err error) {
	u, err := dburl.Parse(raw)
	if err != nil {
		return "", "", err
	}
	switch u.Driver {
	case "postgres":
		return "postgres", raw, nil
	case "mysql":
		return "mysql", u.DSN, nil
	case "sqlserver", "mssql":
		return "sqlserver", u.DSN, nil
	case "sqlite3", "sqlite":
		return "sqlite", u.DSN, nil
	default:
		return "", "", fmt.Errorf("unsupported database scheme %q (driver %s)", u.OriginalScheme, u.Driver)
	}
}

// LocalMySQLDSN composes a go-sql-driver DSN from LOCAL_USER,
// LOCAL_PASSWORD, LOCAL_HOST and LOCAL_DB. It returns "" when LOCAL_HOST is
// unset.
func LocalMySQLDSN(getenv Getenv) string {
	host := getenv("LOCAL_HOST")
	if host == "" {
		return ""
	}
	if _, _, err := net.SplitHostPort(host); err != nil {
		host = net.JoinHostPort(host, "3306")
	}
	c := mysql.NewConfig()
	c.User = getenv("LOCAL_USER")
	c.Passwd = getenv("LOCAL_PASSWORD")
	c.Net = "tcp"
	c.Addr = host
	c.DBName = getenv("LOCAL_DB")
	return c.FormatDSN()
}

// OnlinePostgresDSN composes a postgres URL with sslmode=require from
// ONLINE_USER, ONLINE_PASSWORD, ONLINE_HOST, ONLINE_PORT and ONLINE_DBNAME.
// It returns "" when ONLINE_HOST is unset.
func OnlinePostgresDSN(getenv Getenv) string {
	host := getenv("ONLINE_HOST")
	if host == "" {
		return ""
	}
	if port := getenv("ONLINE_PORT"); port != "" {
		host = net.JoinHostPort(host, port)
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(getenv("ONLINE_USER"), getenv("ONLINE_PASSWORD")),
		Host:     host,
		Path:     "/" + getenv("ONLINE_DBNAME"),
		RawQuery: "sslmode=require",
	}
	return u.String()
}
