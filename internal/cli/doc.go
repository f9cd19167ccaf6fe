// Package cli implements the pupilrec command: configuration from
// PUPILREC_* environment variables and flags, and the migrate, inspect,
// verify and restore commands.
package cli
