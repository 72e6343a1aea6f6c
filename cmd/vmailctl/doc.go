// Command vmailctl administers the vmail account store and the vmaild
// process.
//
// Account commands (domain, user, forward, vacation) open the SQLite store
// directly so they work whether or not vmaild is running. status, start, and
// stop talk to vmaild over its socket.
package main
