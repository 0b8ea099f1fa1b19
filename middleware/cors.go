package middleware

import (
	"net/http"
)

// Fixed CORS headers carried by every chat function response
const (
	AllowOrigin  = "*"
	AllowHeaders = "authorization, x-client-info, apikey, content-type"
	AllowMethods = "POST, OPTIONS"
)

// CORSHeaders sets the fixed CORS headers before anything else writes, so
// error, panic and rate-limit responses carry them too
func CORSHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setCORSHeaders(w.Header())
		next.ServeHTTP(w, r)
	})
}

func setCORSHeaders(h http.Header) {
	h.Set("Access-Control-Allow-Origin", AllowOrigin)
	h.Set("Access-Control-Allow-Headers", AllowHeaders)
	h.Set("Access-Control-Allow-Methods", AllowMethods)
}
