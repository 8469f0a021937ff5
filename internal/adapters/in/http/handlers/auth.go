package handlers

import (
	"net/http"

	"agrifarm/internal/adapters/in/http/middleware"
)

// CurrentUID resolves the buyer uid placed in context by the auth
// middleware.
func CurrentUID(r *http.Request) (string, bool) {
	return middleware.CurrentUserUID(r)
}
