package cfg

import (
	"errors"
	"flag"
	"fmt"
	"time"
)

// Config adds service-specific configuration fields to the
// common cfg.Registerable and cfg.Validatable interfaces
type Config struct {
	DrainSeconds          int
	ShutdownBudgetSeconds int
	APIPort               int
	DetectionEndpoint     string
	AlertEndpoint         string
	DetectionPollSeconds  int
	AlertPollSeconds      int
	AlertPageSize         int
	SessionTimeoutMinutes int
	SessionFetchLimit     int
	SiteID                string
	SiteTimezone          string
	DayScopedSessions     bool
	PolicyStore           string
	DatabaseURL           string
	RedisAddr             string
	CueWebhookURL         string
}

// RegisterFlags binds Config fields to the given FlagSet with defaults inline
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.DrainSeconds, "drain-seconds", 60, "seconds to wait for in-flight requests to drain before shutdown (1..300)")
	fs.IntVar(&c.ShutdownBudgetSeconds, "shutdown-budget-seconds", 90, "total seconds for component shutdown after drain (1..300)")
	fs.IntVar(&c.APIPort, "http-port", 8080, "API listen TCP port (1..65535)")
	fs.StringVar(&c.DetectionEndpoint, "detection-endpoint", "", "base URL of the detection ingestion feed")
	fs.StringVar(&c.AlertEndpoint, "alert-endpoint", "", "base URL of the alert backend feed")
	fs.IntVar(&c.DetectionPollSeconds, "detection-poll-seconds", 10, "detection feed poll interval in seconds (1..3600)")
	fs.IntVar(&c.AlertPollSeconds, "alert-poll-seconds", 15, "alert feed poll interval in seconds (1..3600)")
	fs.IntVar(&c.AlertPageSize, "alert-page-size", 100, "alert feed page size (1..1000)")
	fs.IntVar(&c.SessionTimeoutMinutes, "session-timeout-minutes", 10, "inactivity minutes before a session closes (1..1440)")
	fs.IntVar(&c.SessionFetchLimit, "session-fetch-limit", 2000, "max detection events fetched per poll")
	fs.StringVar(&c.SiteID, "site-id", "", "site identifier sent with detection queries (empty = all sites)")
	fs.StringVar(&c.SiteTimezone, "site-timezone", "UTC", "IANA zone used to derive the local calendar day")
	fs.BoolVar(&c.DayScopedSessions, "day-scoped-sessions", true, "restrict session reconstruction to today's detections")
	fs.StringVar(&c.PolicyStore, "policy-store", "memory", "triage policy backend: memory, postgres, or redis")
	fs.StringVar(&c.DatabaseURL, "database-url", "", "PostgreSQL connection URL (required for policy-store=postgres)")
	fs.StringVar(&c.RedisAddr, "redis-addr", "", "Redis address (required for policy-store=redis)")
	fs.StringVar(&c.CueWebhookURL, "cue-webhook-url", "", "webhook URL that receives audio cue events (empty = log only)")
}

// Validate checks all configuration fields for correctness.
// It returns an error if any field is invalid, or nil if all fields are valid.
func (c *Config) Validate() error {
	var errs []error

	// Drain and shutdown budgets
	if c.DrainSeconds <= 0 || c.DrainSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid DRAIN_SECONDS %d (must be 1..300)", c.DrainSeconds))
	}
	if c.ShutdownBudgetSeconds <= 0 || c.ShutdownBudgetSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid SHUTDOWN_BUDGET_SECONDS %d (must be 1..300)", c.ShutdownBudgetSeconds))
	}

	// Shutdown budget must be greater than drain time
	if c.ShutdownBudgetSeconds <= c.DrainSeconds {
		errs = append(errs, fmt.Errorf("SHUTDOWN_BUDGET_SECONDS %d must be greater than DRAIN_SECONDS %d", c.ShutdownBudgetSeconds, c.DrainSeconds))
	}

	// API port must be valid TCP port number
	if c.APIPort <= 0 || c.APIPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid HTTP_PORT %d (must be 1..65535)", c.APIPort))
	}

	// Both feeds are required; the dashboard is nothing without them
	if c.DetectionEndpoint == "" {
		errs = append(errs, errors.New("DETECTION_ENDPOINT is required"))
	}
	if c.AlertEndpoint == "" {
		errs = append(errs, errors.New("ALERT_ENDPOINT is required"))
	}

	if c.DetectionPollSeconds <= 0 || c.DetectionPollSeconds > 3600 {
		errs = append(errs, fmt.Errorf("invalid DETECTION_POLL_SECONDS %d (must be 1..3600)", c.DetectionPollSeconds))
	}
	if c.AlertPollSeconds <= 0 || c.AlertPollSeconds > 3600 {
		errs = append(errs, fmt.Errorf("invalid ALERT_POLL_SECONDS %d (must be 1..3600)", c.AlertPollSeconds))
	}
	if c.AlertPageSize <= 0 || c.AlertPageSize > 1000 {
		errs = append(errs, fmt.Errorf("invalid ALERT_PAGE_SIZE %d (must be 1..1000)", c.AlertPageSize))
	}
	if c.SessionTimeoutMinutes <= 0 || c.SessionTimeoutMinutes > 1440 {
		errs = append(errs, fmt.Errorf("invalid SESSION_TIMEOUT_MINUTES %d (must be 1..1440)", c.SessionTimeoutMinutes))
	}
	if c.SessionFetchLimit <= 0 {
		errs = append(errs, fmt.Errorf("invalid SESSION_FETCH_LIMIT %d (must be positive)", c.SessionFetchLimit))
	}

	if _, err := time.LoadLocation(c.SiteTimezone); err != nil {
		errs = append(errs, fmt.Errorf("invalid SITE_TIMEZONE %q: %w", c.SiteTimezone, err))
	}

	switch c.PolicyStore {
	case "memory":
	case "postgres":
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for POLICY_STORE=postgres"))
		}
	case "redis":
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required for POLICY_STORE=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid POLICY_STORE %q (must be memory, postgres, or redis)", c.PolicyStore))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
