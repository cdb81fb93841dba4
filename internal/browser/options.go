package browser

import "time"

// config holds internal configuration for an Oracle.
type config struct {
	chromePath   string
	timeout      time.Duration
	noSandbox    bool
	headless     string
	autoDownload bool
	stylesheets  []string
}

func defaultConfig() config {
	return config{
		timeout:  30 * time.Second,
		headless: "new",
	}
}

// Option configures an [Oracle].
type Option func(*config)

// WithChromePath sets the path to the Chrome or Chromium executable.
// By default chromedp searches standard locations.
func WithChromePath(path string) Option {
	return func(c *config) {
		c.chromePath = path
	}
}

// WithTimeout sets the maximum duration of a single measurement.
// Defaults to 30 seconds. A zero or negative value disables the timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// WithNoSandbox disables the Chrome sandbox. This is required when
// running as root, for example inside Docker containers.
func WithNoSandbox() Option {
	return func(c *config) {
		c.noSandbox = true
	}
}

// WithAutoDownload fetches a Chromium build when no executable path is
// configured.
func WithAutoDownload() Option {
	return func(c *config) {
		c.autoDownload = true
	}
}

// WithStylesheet adds CSS to the measuring document
func WithStylesheet(css string) Option {
	return func(c *config) {
		c.stylesheets = append(c.stylesheets, css)
	}
}
