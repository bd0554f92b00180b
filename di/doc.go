// Package di provides the service container the kernel boots.
//
// The container is deliberately small and explicit:
//
//   - Parameters: a flat map of dotted keys to values ("app.name", "db.dsn").
//   - Definitions: a service id, the name of a factory registered in a
//     FactoryRegistry, and the factory's arguments.
//   - Two phases: definitions are collected while the container is open, then
//     Compile resolves placeholders and references and freezes it.
//
// There is no reflection-based injection and no autowiring. Factories are
// plain Go functions registered by name, and configuration files refer to
// them by that name.
//
// Argument syntax (as written in configuration files):
//
//	"%app.name%"         whole parameter value, type preserved
//	"dsn://%db.host%/x"  interpolated into the string
//	"%env(DB_HOST)%"     environment variable, env(DB_HOST) parameter as default
//	"%%"                 literal percent sign
//	"@logger"            reference to another service
//	"@?tracer"           optional reference, nil when undefined
//	"@@handle"           literal "@handle"
//
// A compiled container can be captured with Snapshot and restored with
// FromSnapshot, which is how the kernel's cache avoids re-reading
// configuration on every start.
//
// Typed retrieval is available via GetAs / TryGetAs / MustGetAs.
//
// Import
//
//	"github.com/sghaida/microkernel/di"
package di
