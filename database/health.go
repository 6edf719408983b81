package database

import "context"

// Checker adapts a package level health check to domain.HealthChecker
type Checker struct {
	name  string
	check func(ctx context.Context) error
}

func (c Checker) Name() string { return c.name }

func (c Checker) HealthCheck(ctx context.Context) error { return c.check(ctx) }

func ClickHouseChecker() Checker { return Checker{name: "clickhouse", check: ClickHouseHealthCheck} }

func RedisChecker() Checker { return Checker{name: "redis", check: RedisHealthCheck} }
