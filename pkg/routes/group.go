// Package routes describes HTTP routes and groups independently of the multiplexer.
package routes

import "net/http"

// Group is a set of routes under a common URL prefix.
// Children inherit the parent prefix.
type Group struct {
	Prefix      string
	Description string
	Routes      []Route
	Children    []Group
}

// Route binds a method and pattern to a handler.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}
