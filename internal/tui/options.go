package tui

import "context"

type Option func(*Model)

// WithContext sets the context that bounds the event stream and remote calls.
func WithContext(ctx context.Context) Option {
	return func(m *Model) {
		if ctx != nil {
			m.ctx = ctx
		}
	}
}

func WithTheme(theme Theme) Option {
	return func(m *Model) {
		m.theme = theme
	}
}

func WithAppName(name string) Option {
	return func(m *Model) {
		if name != "" {
			m.appName = name
		}
	}
}
