// Package test provides infrastructure and utilities for integration testing in Quill.
//
// A Suite runs the real API server on an in-memory database, with the agent
// service replaced by a FakeAgent listening on a local port. The suite's API
// clients talk to the server over HTTP, so the whole path from the client
// through the handlers, the dispatcher and the agent call is exercised.
//
// Example Usage:
//
//	func TestExample(t *testing.T) {
//	    suite := test.NewSuite(t)
//	    defer suite.Cleanup()
//
//	    user, userClient := suite.CreateUser("google-key")
//	    // Use userClient to make requests
//	    // Use suite.Agent to script agent answers
//	}
package test
