// Package launcher starts a prebuilt game executable as a child process
// and records what it printed.
package launcher

// Version is the launcher release version.
const Version = "0.3.0"
