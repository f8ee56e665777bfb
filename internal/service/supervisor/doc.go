// Package supervisor implements a development stand-in for the remote supervisor.
//
// It accepts one zone connection at a time, logs every telemetry frame it
// receives and forwards command frames typed on a console (normally stdin).
package supervisor
