// Package scanlog defines a pluggable event logger for the scanning core.
//
// The device scanning core reports HTTP submissions and completions and
// state transitions through the same Logger interface; the Layer values
// for protocol decodes and decoder errors are defined but not emitted. Applications choose how events are consumed: discarded
// (NoopLogger), forwarded to log/slog (SlogAdapter), appended to a CBOR
// trace file (FileLogger), or any combination (MultiLogger).
package scanlog
