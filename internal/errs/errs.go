// Package errs defines the error types returned to API clients.
//
// Every failure leaving a handler is (or is converted into) an *HTTPError
// so the global error handler can render one consistent JSON shape.
package errs
