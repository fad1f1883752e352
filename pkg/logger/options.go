package logger

type options struct {
	file       string
	maxSizeMB  int
	maxBackups int
	maxAgeDays int
}

type Option func(*options)

// File additionally writes logs to a rotating file.
func File(path string, maxSizeMB, maxBackups, maxAgeDays int) Option {
	return func(o *options) {
		o.file = path
		o.maxSizeMB = maxSizeMB
		o.maxBackups = maxBackups
		o.maxAgeDays = maxAgeDays
	}
}
