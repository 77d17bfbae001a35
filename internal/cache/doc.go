// Package cache keeps rendered RTTY signals so repeated transmissions of
// the same text skip synthesis. It has an in-memory LRU tier and a
// persistent zstd-compressed disk tier.
package cache
