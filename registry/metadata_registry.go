package registry

import "github.com/pkg/errors"

// MetadataRegistry stores values shared by many keys, e.g. a source file
// or feature type, so payloads can carry a small id instead of a copy.
type MetadataRegistry[T any] struct {
	values []T
}

func NewMetadataRegistry[T any]() *MetadataRegistry[T] {
	return &MetadataRegistry[T]{}
}

// Add stores v and returns its id. Ids are dense and never reused until Clear.
func (r *MetadataRegistry[T]) Add(v T) uint32 {
	r.values = append(r.values, v)
	return uint32(len(r.values) - 1)
}

func (r *MetadataRegistry[T]) Get(id uint32) (T, error) {
	if int(id) >= len(r.values) {
		var zero T
		return zero, errors.Wrapf(ErrUnknownID, "metadata id %d", id)
	}
	return r.values[id], nil
}

func (r *MetadataRegistry[T]) Len() int {
	return len(r.values)
}

func (r *MetadataRegistry[T]) Clear() {
	clear(r.values)
	r.values = r.values[:0]
}
