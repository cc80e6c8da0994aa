// Package logging provides structured logging for hicolink.
//
// It wraps log/slog to write JSON lines, either to stderr or to a size
// rotated file named hicolink.log inside a configured directory.
//
// # Context Attributes
//
// Child loggers carry persistent attributes that identify where a message
// comes from in the widget graph:
//
//	logger := logging.NopLogger()
//	wl := logger.WithCollection("c1").WithWidget("w2").WithChannel("sortorder")
//	wl.Info("sharing started", "donor", "w5")
//
// produces
//
//	{"time":"...","level":"INFO","msg":"sharing started","collection_id":"c1","widget_id":"w2","channel":"sortorder","donor":"w5"}
//
// # Rotation
//
// [RotatingWriter] renames the live file to hicolink.log.1 once a write would
// take it past RotationConfig.MaxSizeMB, shifting older backups up and
// dropping the one past MaxBackups. It works on any afero.Fs so tests can run
// against an in-memory filesystem.
//
// # Thread Safety
//
// All types in this package are safe for concurrent use. Child loggers share
// the parent's writer.
package logging
