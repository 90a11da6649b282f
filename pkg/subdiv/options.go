package subdiv

import "go.uber.org/zap"

// Option configures a Refiner during construction.
//
// Example:
//
//	r, err := subdiv.New(vertexCount, faces,
//		subdiv.WithLevel(2),
//		subdiv.WithBoundaryInterpolation(subdiv.BoundaryEdgeAndCorner))
type Option func(*options)

type options struct {
	level    int
	boundary BoundaryInterpolation
	creases  [][2]int
	logger   *zap.Logger
}

func defaultOptions() options {
	return options{
		level:    1,
		boundary: BoundaryEdgeOnly,
		logger:   zap.NewNop(),
	}
}

// WithLevel sets the number of uniform refinement steps. Level 0 keeps the
// control cage as the finest level.
func WithLevel(level int) Option {
	return func(o *options) {
		o.level = level
	}
}

// WithBoundaryInterpolation selects the boundary mode. EdgeOnly is the
// default.
func WithBoundaryInterpolation(b BoundaryInterpolation) Option {
	return func(o *options) {
		o.boundary = b
	}
}

// WithCreases marks control-cage edges, given as vertex pairs, as
// infinitely sharp. Every edge descended from a crease stays sharp.
func WithCreases(edges ...[2]int) Option {
	return func(o *options) {
		o.creases = append(o.creases, edges...)
	}
}

// WithLogger sets the logger used for hierarchy and stencil construction
// messages. A nil logger disables logging.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = zap.NewNop()
		}
		o.logger = logger
	}
}
