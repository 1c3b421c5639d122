package display

import (
	"log/slog"

	"github.com/gogpu/gpucontext"
)

// Option configures a Renderer during creation.
//
// Example:
//
//	r := display.NewRenderer(out, backend, provider,
//		display.WithSettings(settings),
//		display.WithLogger(logger))
type Option func(*options)

type options struct {
	settings Settings
	log      *slog.Logger
	device   gpucontext.DeviceProvider
}

func defaultOptions() options {
	return options{settings: DefaultSettings()}
}

// WithSettings replaces the default settings.
func WithSettings(s Settings) Option {
	return func(o *options) {
		o.settings = s
	}
}

// WithLogger logs to l instead of the compositor logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

// WithOverdrawFeedback turns overdraw feedback on or off, overriding the
// settings.
func WithOverdrawFeedback(on bool) Option {
	return func(o *options) {
		o.settings.ShowOverdrawFeedback = on
	}
}

// WithDeviceProvider shares the GPU device of a host application. Render
// pass backings of an immediate renderer built on the software backend
// are then kept resident on that device, and the root framebuffer uses
// the host's surface format when it is one the compositor can draw.
//
// Example:
//
//	r := display.NewRenderer(out, nil, provider,
//		display.WithDeviceProvider(app))
func WithDeviceProvider(p gpucontext.DeviceProvider) Option {
	return func(o *options) {
		o.device = p
	}
}
