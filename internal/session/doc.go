// Package session establishes an authenticated fetch session before the
// crawl starts.
//
// FormLogin performs the usual cookie-based form login: it loads the login
// page, copies the form's hidden inputs, submits the credentials and checks
// the result page for a marker that only signed-in users see. Cookies land
// in the fetcher's jar, so every later request carries the session.
//
// Anonymous is a no-op used when the crawl runs without an account.
package session
