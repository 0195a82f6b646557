// Package httpapi exposes the lending engine over HTTP with fiber.
//
// Callers authenticate with an HS256 bearer token whose "sub" claim is the caller id and whose
// "role" claim is MEMBER or ADMIN. Every response uses the envelope {code, status, message, data};
// on failure the message is the business reason of the refusal.
package httpapi
