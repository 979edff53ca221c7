package app

import "context"

// Task is a background loop started next to the HTTP server.
type Task struct {
	Name string
	Run  func(context.Context) error
}

// Closer releases a resource on shutdown.
type Closer func() error
