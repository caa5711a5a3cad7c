package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	validator "github.com/asaskevich/govalidator"
	"github.com/prebid/prebid-cookiesync/errortypes"
	"github.com/spf13/viper"
)

// Configuration specifies the static application config.
type Configuration struct {
	ExternalURL    string     `mapstructure:"external_url"`
	Host           string     `mapstructure:"host"`
	Port           int        `mapstructure:"port"`
	AdminPort      int        `mapstructure:"admin_port"`
	EnableGzip     bool       `mapstructure:"enable_gzip"`
	StatusResponse string     `mapstructure:"status_response"`
	HostCookie     HostCookie `mapstructure:"host_cookie"`
	CookieSync     CookieSync `mapstructure:"cookie_sync"`
	UserSync       UserSync   `mapstructure:"user_sync"`
	Metrics        Metrics    `mapstructure:"metrics"`
	RateLimit      RateLimit  `mapstructure:"rate_limit"`
	// BidderInfoDir holds one <bidder>.yaml file for every bidder which can be synced.
	BidderInfoDir string             `mapstructure:"bidder_info_dir"`
	Adapters      map[string]Adapter `mapstructure:"adapters"`
}

// MIN_COOKIE_SIZE_BYTES is the smallest value host_cookie.max_cookie_size_bytes may take, other than 0.
const MIN_COOKIE_SIZE_BYTES = 500

type HostCookie struct {
	Domain     string `mapstructure:"domain"`
	Family     string `mapstructure:"family"`
	CookieName string `mapstructure:"cookie_name"`
	// OptOutCookie, when present on a request, marks the user as opted out regardless of the uids cookie.
	OptOutCookie       Cookie `mapstructure:"opt_out_cookie"`
	TTL                int64  `mapstructure:"ttl_days"`
	MaxCookieSizeBytes int    `mapstructure:"max_cookie_size_bytes"`
}

func (cfg *HostCookie) TTLDuration() time.Duration {
	return time.Duration(cfg.TTL) * time.Hour * 24
}

type Cookie struct {
	Name  string `mapstructure:"name"`
	Value string `mapstructure:"value"`
}

// CookieSync configures the /cookie_sync endpoint.
type CookieSync struct {
	// CountFailedRequests makes the cookie_sync_requests metric count opted-out and unparseable
	// requests too. By default only requests which produce a sync response are counted.
	CountFailedRequests bool `mapstructure:"count_failed_requests"`
}

// UserSync holds the host defaults used to build each bidder's sync URL.
type UserSync struct {
	// RedirectURL is the template for the /setuid callback embedded in sync URLs.
	RedirectURL string `mapstructure:"redirect_url"`
}

type Metrics struct {
	Influxdb   InfluxMetrics     `mapstructure:"influxdb"`
	Prometheus PrometheusMetrics `mapstructure:"prometheus"`
}

type InfluxMetrics struct {
	Host               string `mapstructure:"host"`
	Database           string `mapstructure:"database"`
	Username           string `mapstructure:"username"`
	Password           string `mapstructure:"password"`
	MetricSendInterval int    `mapstructure:"metric_send_interval"`
}

type PrometheusMetrics struct {
	Port             int    `mapstructure:"port"`
	Namespace        string `mapstructure:"namespace"`
	Subsystem        string `mapstructure:"subsystem"`
	TimeoutMillisRaw int    `mapstructure:"timeout_ms"`
}

func (cfg *PrometheusMetrics) Timeout() time.Duration {
	return time.Duration(cfg.TimeoutMillisRaw) * time.Millisecond
}

type RateLimit struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
}

type validate func(cfg *Configuration, errs []error) []error

var validators = []validate{
	validateServer,
	validateHostCookie,
	validateMetrics,
	validateRateLimit,
	validateAdapters,
}

func (cfg *Configuration) validate() []error {
	var errs []error
	for _, fn := range validators {
		errs = fn(cfg, errs)
	}
	return errs
}

func validateServer(cfg *Configuration, errs []error) []error {
	if cfg.Port <= 0 {
		errs = append(errs, fmt.Errorf("port must be positive. Got %d", cfg.Port))
	}
	if cfg.AdminPort <= 0 {
		errs = append(errs, fmt.Errorf("admin_port must be positive. Got %d", cfg.AdminPort))
	}
	if cfg.Port == cfg.AdminPort {
		errs = append(errs, fmt.Errorf("port and admin_port must differ. Both are %d", cfg.Port))
	}
	if !validator.IsURL(cfg.ExternalURL) {
		errs = append(errs, fmt.Errorf("external_url \"%s\" is not a valid URL", cfg.ExternalURL))
	}
	return errs
}

func validateHostCookie(cfg *Configuration, errs []error) []error {
	if cfg.HostCookie.TTL <= 0 {
		errs = append(errs, fmt.Errorf("host_cookie.ttl_days must be positive. Got %d", cfg.HostCookie.TTL))
	}
	if err := isValidCookieSize(cfg.HostCookie.MaxCookieSizeBytes); err != nil {
		errs = append(errs, err)
	}
	optOut := cfg.HostCookie.OptOutCookie
	if (optOut.Name == "") != (optOut.Value == "") {
		errs = append(errs, errors.New("host_cookie.opt_out_cookie requires both a name and a value"))
	}
	return errs
}

// isValidCookieSize returns an error if the cookie size is neither 0 (unlimited) nor at least MIN_COOKIE_SIZE_BYTES.
func isValidCookieSize(maxCookieSize int) error {
	if maxCookieSize != 0 && maxCookieSize < MIN_COOKIE_SIZE_BYTES {
		return fmt.Errorf("Configured cookie size is less than allowed minimum size of %d", MIN_COOKIE_SIZE_BYTES)
	}
	return nil
}

func validateMetrics(cfg *Configuration, errs []error) []error {
	if cfg.Metrics.Influxdb.Host != "" && cfg.Metrics.Influxdb.MetricSendInterval <= 0 {
		errs = append(errs, fmt.Errorf("metrics.influxdb.metric_send_interval must be positive. Got %d", cfg.Metrics.Influxdb.MetricSendInterval))
	}
	prom := cfg.Metrics.Prometheus
	if prom.Port != 0 {
		if prom.Port == cfg.Port || prom.Port == cfg.AdminPort {
			errs = append(errs, fmt.Errorf("metrics.prometheus.port %d collides with another listener", prom.Port))
		}
		if prom.TimeoutMillisRaw <= 0 {
			errs = append(errs, fmt.Errorf("metrics.prometheus.timeout_ms must be positive. Got %d", prom.TimeoutMillisRaw))
		}
	}
	return errs
}

func validateRateLimit(cfg *Configuration, errs []error) []error {
	if cfg.RateLimit.Enabled && cfg.RateLimit.RequestsPerSecond <= 0 {
		errs = append(errs, fmt.Errorf("rate_limit.requests_per_second must be positive when enabled. Got %f", cfg.RateLimit.RequestsPerSecond))
	}
	return errs
}

// New uses viper to get our server configurations.
func New(v *viper.Viper) (*Configuration, error) {
	var c Configuration
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("viper failed to unmarshal app config: %v", err)
	}

	if errs := c.validate(); len(errs) > 0 {
		return &c, errortypes.NewAggregateErrors("validation errors", errs)
	}

	return &c, nil
}

// SetupViper sets default values for the app config. filename is the name of the config
// file (without extension) which will be searched for in the current directory and /etc/config.
// Every key can also be set through a PBS_ prefixed environment variable, with '.' replaced by '_'.
func SetupViper(v *viper.Viper, filename string) {
	if filename != "" {
		v.SetConfigName(filename)
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/config")
	}

	v.SetDefault("external_url", "http://localhost:8000")
	v.SetDefault("host", "")
	v.SetDefault("port", 8000)
	v.SetDefault("admin_port", 6060)
	v.SetDefault("enable_gzip", false)
	v.SetDefault("status_response", "")
	v.SetDefault("bidder_info_dir", "./static/bidder-info")
	v.SetDefault("host_cookie.domain", "")
	v.SetDefault("host_cookie.family", "")
	v.SetDefault("host_cookie.cookie_name", "")
	v.SetDefault("host_cookie.opt_out_cookie.name", "")
	v.SetDefault("host_cookie.opt_out_cookie.value", "")
	v.SetDefault("host_cookie.ttl_days", 90)
	v.SetDefault("host_cookie.max_cookie_size_bytes", 0)
	v.SetDefault("cookie_sync.count_failed_requests", false)
	v.SetDefault("user_sync.redirect_url", "{{.ExternalURL}}/setuid?bidder={{.SyncerKey}}&uid={{.UserMacro}}")
	v.SetDefault("metrics.influxdb.host", "")
	v.SetDefault("metrics.influxdb.database", "")
	v.SetDefault("metrics.influxdb.username", "")
	v.SetDefault("metrics.influxdb.password", "")
	v.SetDefault("metrics.influxdb.metric_send_interval", 20)
	v.SetDefault("metrics.prometheus.port", 0)
	v.SetDefault("metrics.prometheus.namespace", "")
	v.SetDefault("metrics.prometheus.subsystem", "")
	v.SetDefault("metrics.prometheus.timeout_ms", 10000)
	v.SetDefault("rate_limit.enabled", false)
	v.SetDefault("rate_limit.requests_per_second", 1000)

	// Adapter keys are registered so that environment variable overrides resolve for them.
	for _, bidder := range knownAdapters {
		v.SetDefault("adapters."+bidder+".usersync_url", "")
		v.SetDefault("adapters."+bidder+".disabled", false)
	}

	v.SetEnvPrefix("PBS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.ReadInConfig()
}
