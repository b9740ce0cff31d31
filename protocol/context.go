package protocol

import (
	"context"
	"maps"
)

type metadataKey struct{}

// Metadata holds transport-level key/value pairs for a single call.
// The HTTP transport sends each entry as a request header.
type Metadata map[string]string

// ContextWithMetadata returns a context carrying md.
func ContextWithMetadata(ctx context.Context, md Metadata) context.Context {
	return context.WithValue(ctx, metadataKey{}, md)
}

// MetadataFromContext returns the metadata attached to ctx, or nil.
func MetadataFromContext(ctx context.Context) Metadata {
	md, _ := ctx.Value(metadataKey{}).(Metadata)
	return md
}

// WithMetadataValue returns a context whose metadata has key set to value.
// The metadata already in ctx is copied, never mutated.
func WithMetadataValue(ctx context.Context, key, value string) context.Context {
	md := make(Metadata)
	maps.Copy(md, MetadataFromContext(ctx))
	md[key] = value
	return ContextWithMetadata(ctx, md)
}
