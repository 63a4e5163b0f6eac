// Package provider defines the provider-agnostic interface to text
// completion backends.
//
// The pipeline only needs one operation (send a prompt, get the raw
// completion text back), so the interface is deliberately small. Concrete
// backends (the bundled openai package, test doubles) register themselves
// in a factory registry and are constructed by name:
//
//	client, err := provider.New("openai", provider.Config{
//	    Endpoint: "https://api.openai.com",
//	    APIKey:   key,
//	    Model:    "gpt-4o",
//	})
package provider

import "context"

// Client is a completion backend.
type Client interface {
	// Complete sends a request and returns the full response. The context
	// controls cancellation and timeouts.
	Complete(ctx context.Context, req Request) (*Response, error)

	// Provider returns the backend name (e.g. "openai").
	Provider() string

	// Close releases any resources held by the client.
	Close() error
}
