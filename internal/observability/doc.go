// Package observability builds the zap loggers shared by the campus client
// and the chat function.
//
// Loggers are constructed once in main and injected; request-scoped fields
// such as request_id are added by callers with zap fields.
package observability
