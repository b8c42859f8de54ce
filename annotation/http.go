package annotation

import (
	"log"
	"net/http"
	"net/url"
	"time"
)

// i18nMiddleware adds the request localizer to the context
func i18nMiddleware(fallback string, handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		localizer := LocalizerFromRequest(r, fallback)
		handler.ServeHTTP(w, r.WithContext(WithLocalizer(r.Context(), localizer)))
	})
}

// sameOriginMiddleware refuses form posts sent from another site
func sameOriginMiddleware(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			if origin := r.Header.Get("Origin"); origin != "" {
				u, err := url.Parse(origin)
				if err != nil || u.Host != r.Host {
					log.Printf("http: refused %s %s from origin %q", r.Method, r.URL.Path, origin)
					http.Error(w, "cross-origin request refused", http.StatusForbidden)
					return
				}
			}
		}
		handler.ServeHTTP(w, r)
	})
}

func HTTPLogger(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		initialTime := time.Now()
		wr := NewStatusCodeRecorderResponseWriter(w)
		handler.ServeHTTP(wr, r)
		log.Printf("http: time:%dms %d %s %s", time.Since(initialTime).Milliseconds(), wr.Status, r.Method, r.URL.Path)
	})
}

type StatusCodeRecorderResponseWriter struct {
	http.ResponseWriter
	Status int
}

func (r *StatusCodeRecorderResponseWriter) WriteHeader(status int) {
	r.Status = status
	r.ResponseWriter.WriteHeader(status)
}

func NewStatusCodeRecorderResponseWriter(w http.ResponseWriter) *StatusCodeRecorderResponseWriter {
	return &StatusCodeRecorderResponseWriter{ResponseWriter: w, Status: http.StatusOK}
}
