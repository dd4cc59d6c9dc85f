// Package cookiestore holds the cookie model shared by the CookieService implementations
// in memstore and postgresstore: parsing Set-Cookie values, matching cookies against
// request URLs, rendering Cookie headers and the accept policy flags.
package cookiestore
