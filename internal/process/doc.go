// Package process manages external converter processes as groups so a
// timed-out conversion can be torn down with all of its children.
package process
