package postgres

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/otel/attribute"
)

const (
	preparedBinaryParam = "disable_prepared_binary_result"
	tracedQueryLimit    = 512
)

type Options struct {
	URL string
	// DisablePreparedBinary is needed behind poolers that reject binary
	// results for prepared statements.
	DisablePreparedBinary bool
	MaxOpenConns          int
	MaxIdleConns          int
	ConnMaxLifetime       time.Duration
	PingTimeout           time.Duration
}

// Open connects to postgres with query tracing and verifies the connection.
func Open(ctx context.Context, opts Options) (*sqlx.DB, error) {
	dsn := PrepareDSN(opts.URL, opts.DisablePreparedBinary)

	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
		otelsql.WithDBName(DatabaseName(dsn)),
		otelsql.WithQueryFormatter(traceQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxIdleConns)
	db.SetConnMaxLifetime(opts.ConnMaxLifetime)

	pingTimeout := opts.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// PrepareDSN adds the prepared-binary switch to a URL-style dsn unless the
// caller already set it. Key/value dsns are returned as is.
func PrepareDSN(raw string, disablePreparedBinary bool) string {
	if !disablePreparedBinary {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return raw
	}
	q := u.Query()
	if q.Has(preparedBinaryParam) {
		return raw
	}
	q.Set(preparedBinaryParam, "yes")
	u.RawQuery = q.Encode()
	return u.String()
}

// DatabaseName reads the database from either dsn form. Empty when absent.
func DatabaseName(dsn string) string {
	dsn = strings.TrimSpace(dsn)
	if u, err := url.Parse(dsn); err == nil && u.Scheme != "" {
		if name := strings.Trim(u.Path, "/ "); name != "" {
			return name
		}
	}
	for _, field := range strings.Fields(dsn) {
		key, value, ok := strings.Cut(field, "=")
		if ok && key == "dbname" {
			return strings.Trim(value, `"'`)
		}
	}
	return ""
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// traceQuery collapses whitespace so spans show one-line statements.
func traceQuery(query string) string {
	query = whitespaceRun.ReplaceAllString(strings.TrimSpace(query), " ")
	if len(query) > tracedQueryLimit {
		return query[:tracedQueryLimit] + "..."
	}
	return query
}
