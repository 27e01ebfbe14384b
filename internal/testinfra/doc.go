// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

// Package testinfra provides container-backed infrastructure for
// integration tests.
//
// It uses testcontainers-go to run real services in Docker so tests
// exercise actual wire behavior instead of mocks.
//
// # NATS Container
//
// NATSContainer runs a JetStream-enabled NATS server for event
// pipeline tests:
//
//	func TestPublishConsume(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//
//	    ctx := context.Background()
//	    nats, err := testinfra.NewNATSContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer nats.Terminate(ctx)
//
//	    // Connect publishers and subscribers to nats.URL.
//	}
//
// # CI Considerations
//
// These tests require Docker and are gated behind the integration
// build tag. They skip gracefully when Docker is unavailable, and the
// first run downloads container images.
package testinfra
