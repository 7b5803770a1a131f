// Package watch re-runs a filter whenever its input script changes. It
// monitors the script (and optional extra files such as the config file),
// debounces the bursts of events editors produce on save, and reports what
// each run kept and removed.
package watch
