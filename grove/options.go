package grove

import (
	"genogrove/bplustree"
	"genogrove/graph"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

type options struct {
	order      int
	bulkFill   float64
	logger     *zap.Logger
	edgePolicy graph.DuplicatePolicy
	cacheCost  int64
	registerer prometheus.Registerer
	compress   bool
	codec      any // DataCodec[D], checked in New
}

func defaultOptions() options {
	return options{
		order:    bplus.DefaultOrder,
		bulkFill: bplus.DefaultBulkFill,
		logger:   zap.NewNop(),
		compress: true,
	}
}

// Option configures a Grove.
type Option func(*options)

// WithOrder sets the maximum number of entries per tree node.
func WithOrder(order int) Option {
	return func(o *options) { o.order = order }
}

// WithBulkFill sets the leaf utilisation targeted by bulk loads, clamped
// to [0.75, 0.90].
func WithBulkFill(fill float64) Option {
	return func(o *options) { o.bulkFill = fill }
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithEdgePolicy sets how AddEdge treats an already connected pair.
func WithEdgePolicy(p graph.DuplicatePolicy) Option {
	return func(o *options) { o.edgePolicy = p }
}

// WithQueryCache caches Intersect results up to maxCost matched keys.
// Zero disables the cache.
func WithQueryCache(maxCost int64) Option {
	return func(o *options) { o.cacheCost = maxCost }
}

// WithMetrics registers the grove's counters with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// WithCompression toggles zstd compression of the serialized body.
func WithCompression(on bool) Option {
	return func(o *options) { o.compress = on }
}

// WithDataCodec sets the payload codec used by serialization. The default
// encodes payloads as JSON.
func WithDataCodec[D any](c DataCodec[D]) Option {
	return func(o *options) { o.codec = c }
}

func (o options) treeConfig() *bplus.Config {
	return (&bplus.Config{
		Order:    o.order,
		BulkFill: o.bulkFill,
		Logger:   o.logger,
	}).OrDefault()
}
