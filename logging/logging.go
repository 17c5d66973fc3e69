// Package logging builds the zap loggers used by the pdfrender command.
//
// A Logger tees every entry to the console and, when a path is configured,
// to a rotating JSON log file. Fields that carry document passwords are
// redacted before they reach any output. The library packages take a plain
// *zap.Logger; pass Logger.Zap to pdfium.SetLogger to route their entries
// through the same cores.
package logging
