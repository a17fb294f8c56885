package weatherstations

import (
	"fmt"
	"sort"

	"github.com/chrissnell/wxcore/internal/errcode"
	"github.com/chrissnell/wxcore/internal/types"
	"github.com/chrissnell/wxcore/internal/weatherstations/davis"
	"github.com/chrissnell/wxcore/pkg/units"
)

// Registry maps station types to their frame decoders
type Registry struct {
	decoders map[units.StationType]FrameDecoder
}

// NewRegistry builds a registry from decoders. A later decoder for the same
// station type replaces an earlier one.
func NewRegistry(decoders ...FrameDecoder) *Registry {
	r := &Registry{decoders: make(map[units.StationType]FrameDecoder, len(decoders))}
	for _, d := range decoders {
		r.decoders[d.StationType()] = d
	}
	return r
}

// Lookup returns the decoder for station
func (r *Registry) Lookup(station units.StationType) (FrameDecoder, error) {
	d, ok := r.decoders[station]
	if !ok {
		return nil, errcode.New(errcode.UnsupportedStation, "weatherstations.Lookup",
			fmt.Sprintf("no decoder for station type %q", station))
	}
	return d, nil
}

// StationTypes lists the registered station types in sorted order
func (r *Registry) StationTypes() []units.StationType {
	st := make([]units.StationType, 0, len(r.decoders))
	for t := range r.decoders {
		st = append(st, t)
	}
	sort.Slice(st, func(i, j int) bool { return st[i] < st[j] })
	return st
}

// Decode dispatches frame to the decoder registered for station. The station
// type is checked before the frame is examined.
func (r *Registry) Decode(frame []byte, station units.StationType) (types.Reading, error) {
	d, err := r.Lookup(station)
	if err != nil {
		return types.Reading{}, err
	}
	return d.Decode(frame)
}

var defaultRegistry = NewRegistry(davis.NewLoopDecoder(nil))

// DefaultRegistry returns the registry of built-in decoders, which
// timestamp readings with the wall clock
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Decode decodes frame with the built-in decoder for station
func Decode(frame []byte, station units.StationType) (types.Reading, error) {
	return defaultRegistry.Decode(frame, station)
}
