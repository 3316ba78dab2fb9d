package utils

const (
	// IgnoreFileName is the per-root ignore file appended to the configured patterns.
	IgnoreFileName = ".dirtreeignore"
	// GlobalConfigDirectoryName is the directory below the user's home holding the global configuration.
	GlobalConfigDirectoryName = ".dirtree"
	// GlobalConfigFileName is the global configuration file inside GlobalConfigDirectoryName.
	GlobalConfigFileName = "config.yaml"
	// LocalConfigFileName is the per-directory configuration file.
	LocalConfigFileName = ".dirtree.yaml"
)

const (
	// LoggerInitializationFailedMessageFormat reports a logger that could not be built.
	LoggerInitializationFailedMessageFormat = "failed to initialize logger: %w"
	// ApplicationExecutionFailedMessage prefixes a fatal command error.
	ApplicationExecutionFailedMessage = "dirtree failed"
)
