// Package render contains the output bridges that watch a timeline runtime.
// Bridges are ordinary notification subscribers; the runtime knows nothing
// about them. LogSink mirrors playback into structured logs and
// SocketIOBridge forwards it to a remote visualizer over socket.io.
package render
