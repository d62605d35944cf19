package botx

import "golang.org/x/exp/slog"

// Options defines options for Bot.
type Options struct {
	Workers int
	// QueueSize is the number of requests waiting for a busy worker.
	QueueSize int
	Logger    *slog.Logger
}

// Option defines a function that configures Bot.
type Option func(*Options)

// WithWorkers sets the number of workers to run.
func WithWorkers(workers int) Option {
	return func(o *Options) { o.Workers = workers }
}

// WithQueueSize sets the size of a worker queue.
func WithQueueSize(size int) Option {
	return func(o *Options) { o.QueueSize = size }
}

// WithLogger sets the logger of the bot.
func WithLogger(lg *slog.Logger) Option {
	return func(o *Options) { o.Logger = lg }
}
