// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
)

// mockService is a suture.Service that fails a scripted number of times
// and then runs until cancelled.
type mockService struct {
	name     string
	starts   atomic.Int32
	failures atomic.Int32
	maxFails int32
}

func newMockService(name string, maxFails int32) *mockService {
	return &mockService{name: name, maxFails: maxFails}
}

func (m *mockService) Serve(ctx context.Context) error {
	m.starts.Add(1)
	if m.failures.Add(1) <= m.maxFails {
		return errors.New("simulated failure")
	}
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockService) String() string {
	return m.name
}
