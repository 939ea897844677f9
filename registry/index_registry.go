// Package registry holds caller-owned lookup tables: index labels and
// shared payload metadata addressed by small integer ids.
package registry

import (
	"github.com/pkg/errors"
)

// ErrUnknownID is returned when an id was never issued.
var ErrUnknownID = errors.New("unknown registry id")

// IndexRegistry maps index labels (chromosome names) to dense uint32 ids
// in registration order.
type IndexRegistry struct {
	ids    map[string]uint32
	labels []string
}

func NewIndexRegistry() *IndexRegistry {
	return &IndexRegistry{ids: make(map[string]uint32)}
}

// Register returns the id of label, assigning the next one on first use.
func (r *IndexRegistry) Register(label string) uint32 {
	if id, ok := r.ids[label]; ok {
		return id
	}
	id := uint32(len(r.labels))
	r.ids[label] = id
	r.labels = append(r.labels, label)
	return id
}

// ID looks up label without registering it.
func (r *IndexRegistry) ID(label string) (uint32, bool) {
	id, ok := r.ids[label]
	return id, ok
}

func (r *IndexRegistry) Label(id uint32) (string, error) {
	if int(id) >= len(r.labels) {
		return "", errors.Wrapf(ErrUnknownID, "index id %d", id)
	}
	return r.labels[id], nil
}

func (r *IndexRegistry) Len() int {
	return len(r.labels)
}

// Labels returns the labels ordered by id.
func (r *IndexRegistry) Labels() []string {
	return append([]string(nil), r.labels...)
}

func (r *IndexRegistry) Clear() {
	clear(r.ids)
	r.labels = r.labels[:0]
}
