// Package cmdline models executable command lines with quote-aware parsing,
// deterministic argument normalization, and placeholder substitution.
//
// CommandLine supports incremental construction through AddArgument as well as
// parsing complete command strings, and resolves ${name} placeholder tokens
// against a substitution map when producing the concrete argument vector.
package cmdline
