package utils

// LoggerInitializationFailedMessageFormat formats a logger construction failure.
const LoggerInitializationFailedMessageFormat = "initialize logger: %w"

// ApplicationExecutionFailedMessage prefixes a fatal command failure.
const ApplicationExecutionFailedMessage = "inventory failed"
