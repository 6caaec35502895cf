package router

import (
	"net/http"
)

// Chain builds a handler wrapped by an ordered list of middlewares.
type Chain struct {
	handler     http.Handler
	middlewares []func(http.Handler) http.Handler
}

// NewChain creates a Chain around the base handler. It panics on nil.
func NewChain(h http.Handler) *Chain {
	if h == nil {
		panic("chain handler cannot be nil")
	}
	return &Chain{
		handler:     h,
		middlewares: make([]func(http.Handler) http.Handler, 0),
	}
}

// WithMiddleware adds one or more middlewares to the chain.
// Middlewares execute in the order they are defined, from left to right,
// across calls:
//
//	.WithMiddleware(mw1, mw2).WithMiddleware(mw3)
//
// runs mw1, then mw2, then mw3, then the handler. The first middleware is the
// outermost one.
func (c *Chain) WithMiddleware(middlewares ...func(http.Handler) http.Handler) *Chain {
	c.middlewares = append(c.middlewares, middlewares...)
	return c
}

// Handler returns the base handler with all middlewares applied.
func (c *Chain) Handler() http.Handler {
	handler := c.handler
	for i := len(c.middlewares) - 1; i >= 0; i-- {
		handler = c.middlewares[i](handler)
	}
	return handler
}
