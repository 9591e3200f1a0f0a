// Package fetch updates remote-tracking branches for every repository in the
// working-directory scope. Each remote is fetched in-process first; when that
// fails the external git client is invoked once so that its credential
// helpers can take over.
package fetch
