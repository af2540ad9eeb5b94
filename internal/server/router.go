package server

import "net/http"

// Router registers the callback service's handlers behind a shared
// middleware stack. Method dispatch is delegated to [http.ServeMux] method
// patterns; a request with a wrong method on a known path gets a 405 from
// the mux itself.
type Router struct {
	mux         *http.ServeMux
	middlewares []Middleware
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{mux: http.NewServeMux()}
}

// Use appends middleware to the stack. Middleware added first runs
// outermost.
func (r *Router) Use(middleware ...Middleware) {
	r.middlewares = append(r.middlewares, middleware...)
}

// Handle registers a handler for one method and path.
func (r *Router) Handle(method, path string, handler http.Handler) {
	r.mux.Handle(method+" "+path, r.apply(handler))
}

// Handler registers a [Handler] under every route it declares.
func (r *Router) Handler(handler Handler) {
	wrapped := r.apply(handler)
	for _, route := range handler.Routes() {
		r.mux.Handle(route, wrapped)
	}
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// apply wraps a handler in the middleware stack, innermost last.
func (r *Router) apply(handler http.Handler) http.Handler {
	wrapped := handler
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		wrapped = r.middlewares[i](wrapped)
	}
	return wrapped
}
