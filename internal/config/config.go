package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"regexp"
	"strconv"

	"backed-protocol/pkg/rate"
)

type Config struct {
	AppPort string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	RedisAddr string
	RedisDB   int

	CustodyBaseURL string

	IdempTTLSecs int

	// Protocol settings seeded at startup; the fee rate and improvement
	// percent remain mutable through the admin endpoints.
	AdminID            string
	OriginationFeeRate uint64
	ImprovementPercent uint64
	BorrowTicketAsset  string
	LendTicketAsset    string
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvUint(k string, d uint64) uint64 {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n
		}
	}
	return d
}

func Load() *Config {
	c := &Config{
		AppPort:   getenv("APP_PORT", "8080"),
		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "backed"),
		MySQLUser: getenv("MYSQL_USER", "backed"),
		MySQLPass: getenv("MYSQL_PASS", "backed"),

		RedisAddr:    getenv("REDIS_ADDR", "redis:6379"),
		IdempTTLSecs: 300,

		CustodyBaseURL: getenv("CUSTODY_BASE_URL", "http://custody:9090"),

		AdminID:            getenv("ADMIN_ID", ""),
		OriginationFeeRate: getenvUint("ORIGINATION_FEE_RATE", 10_000_000_000), // 1%
		ImprovementPercent: getenvUint("IMPROVEMENT_PERCENT", 10),
		BorrowTicketAsset:  getenv("BORROW_TICKET_ASSET", "backed-borrow-ticket"),
		LendTicketAsset:    getenv("LEND_TICKET_ASSET", "backed-lend-ticket"),
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RedisDB = n
		}
	}
	if v := os.Getenv("IDEMPOTENCY_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.IdempTTLSecs = n
		}
	}
	return c
}

var reHex32 = regexp.MustCompile(`^[a-f0-9]{32}$`)

func (c *Config) Validate() error {
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if c.CustodyBaseURL == "" {
		return errors.New("missing CUSTODY_BASE_URL")
	}
	if !reHex32.MatchString(c.AdminID) {
		return errors.New("ADMIN_ID must be 32-char lowercase hex")
	}
	if c.OriginationFeeRate > rate.MaxFeeRate {
		return fmt.Errorf("ORIGINATION_FEE_RATE %d exceeds maximum %d", c.OriginationFeeRate, uint64(rate.MaxFeeRate))
	}
	if c.ImprovementPercent == 0 || c.ImprovementPercent > 100 {
		return errors.New("IMPROVEMENT_PERCENT must be in 1..100")
	}
	if c.BorrowTicketAsset == "" || c.LendTicketAsset == "" || c.BorrowTicketAsset == c.LendTicketAsset {
		return errors.New("ticket asset identifiers must be set and distinct")
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// multiStatements=true is handy for migrations; parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
