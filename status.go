package crabnode

// ConnectionStatus connection lifecycle state
type ConnectionStatus string

const (
	// StatusDisconnected no node is held
	StatusDisconnected ConnectionStatus = "Disconnected"

	// StatusConnecting a node is being created and started
	StatusConnecting ConnectionStatus = "Connecting"

	// StatusConnected the node is running
	StatusConnected ConnectionStatus = "Connected"

	// StatusError the last connect failed. Only a new connect leaves this state
	StatusError ConnectionStatus = "Error"
)

func (status ConnectionStatus) String() string {
	return string(status)
}
