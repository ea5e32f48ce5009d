// Package mock provides a test double for the designs.Source interface.
//
// Source serves canned records per resource path, can inject errors and can
// hold fetches open on a gate channel to exercise single-flight behaviour.
//
// Example:
//
//	src := &mock.Source{Records: map[string][]designs.Record{
//	    "TrainingService/ListAllTrainingDesigns2": {{"TrainingDesignId": "1", "TrainingName": "Alpha"}},
//	}}
package mock

import (
	"context"
	"sync"

	"github.com/MrWong99/starbridge/internal/designs"
)

// FetchCall records a single invocation of Fetch.
type FetchCall struct {
	// Path is the resource path passed to Fetch.
	Path string
}

// Source is a mock implementation of designs.Source.
type Source struct {
	mu sync.Mutex

	// Records maps a resource path to the records returned for it. Unknown
	// paths yield an empty slice.
	Records map[string][]designs.Record

	// Err, if non-nil, is returned by Fetch instead of records.
	Err error

	// Gate, if non-nil, blocks every Fetch until a value is received or the
	// channel is closed (or the context ends).
	Gate chan struct{}

	// Started, if non-nil, receives one value each time a Fetch begins.
	Started chan struct{}

	// Calls records every invocation of Fetch in order.
	Calls []FetchCall
}

// Fetch records the call and returns the configured records or error.
func (s *Source) Fetch(ctx context.Context, path string) ([]designs.Record, error) {
	s.mu.Lock()
	s.Calls = append(s.Calls, FetchCall{Path: path})
	gate, started := s.Gate, s.Started
	s.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	src := s.Records[path]
	out := make([]designs.Record, len(src))
	copy(out, src)
	return out, nil
}

// SetRecords replaces the records served for path. Thread-safe.
func (s *Source) SetRecords(path string, records []designs.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Records == nil {
		s.Records = make(map[string][]designs.Record)
	}
	s.Records[path] = records
}

// SetErr replaces the injected error. Thread-safe.
func (s *Source) SetErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Err = err
}

// SetGate replaces the Gate and Started channels. Thread-safe.
func (s *Source) SetGate(gate, started chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Gate = gate
	s.Started = started
}

// CallCount returns the number of Fetch invocations. Thread-safe.
func (s *Source) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Calls)
}

// Reset clears all recorded calls. Thread-safe.
func (s *Source) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls = nil
}

// Ensure Source implements designs.Source at compile time.
var _ designs.Source = (*Source)(nil)
