// Package translation coordinates the local inference engines: it owns the
// active model handler, serializes access to it, runs translations, and feeds
// the history log. One operation runs at a time; concurrent requests are
// rejected rather than queued.
package translation
