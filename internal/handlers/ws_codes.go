// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes used by the board console handler.
const (
	BadSubprotocolError   = 3000 // Client connected with an unsupported subprotocol.
	InvalidAuthTokenError = 3001 // Host token missing, invalid or expired.
	SlowConsumerError     = 3002 // Outbound queue overflowed; the console should reconnect.
)
