package settings

import "sync"

type Arguments struct {
	// The file path to the schema data files
	DataDir string

	// Directory for log files
	LogDir string

	ConfigFile string

	// The business whose schema graph this process edits
	BusinessID string

	// The mode of operation
	// standalone, readonly
	Mode string

	// the host name or IP address to listen on
	Host string

	// the port number to listen on
	Port int

	// Strongly verbose logging
	Verbose bool

	Debug bool

	AuthEnabled bool // Enable authentication

	Version string

	PrintToScreen bool
}

var (
	instance *Arguments
	once     sync.Once
)

// GetSettings returns the process-wide Arguments instance
func GetSettings() *Arguments {
	once.Do(func() {
		instance = &Arguments{}
	})
	return instance
}
