package gridloader

// Option configures a Pipeline.
type Option interface {
	apply(*pipeline) error
}

type optionFunc func(*pipeline) error

func (f optionFunc) apply(p *pipeline) error {
	return f(p)
}

// WithPrettyLogging configures the pipeline to print human friendly logs.
func WithPrettyLogging() Option {
	return optionFunc(func(p *pipeline) error {
		p.prettyLogging = true
		return nil
	})
}

// WithLogLevel sets the log level: "debug", "info", "warn" or "error".
func WithLogLevel(level string) Option {
	return optionFunc(func(p *pipeline) error {
		p.logLevel = level
		return nil
	})
}

// WithConcurrency bounds how many tasks run at once.
func WithConcurrency(n int) Option {
	return optionFunc(func(p *pipeline) error {
		p.concurrency = n
		return nil
	})
}

// WithRateLimit caps requests per second against the transparency platform.
// The limiter is shared by all tasks.
func WithRateLimit(rps float64) Option {
	return optionFunc(func(p *pipeline) error {
		p.rateLimit = rps
		return nil
	})
}

// WithSource replaces the default REST source.
func WithSource(s Source) Option {
	return optionFunc(func(p *pipeline) error {
		p.source = s
		return nil
	})
}

// WithNotifier replaces the notifier built from the Slack configuration.
func WithNotifier(n Notifier) Option {
	return optionFunc(func(p *pipeline) error {
		p.notifier = n
		return nil
	})
}
