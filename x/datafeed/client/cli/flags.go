package cli

// Flag constants for datafeed CLI commands
const (
	// Signing flags
	FlagKey     = "key"
	FlagKeyFile = "key-file"

	// Deployment flags
	FlagServer      = "server"
	FlagBeneficiary = "beneficiary"
	FlagMetadata    = "metadata"

	// Output flags
	FlagJSON = "json"
)
