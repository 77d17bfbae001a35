// Package queue holds texts waiting to be keyed. Items leave in priority
// order, then in the order they arrived; a full queue either rejects new
// work or drops the oldest waiting item.
package queue
