package logger

// Component-specific logger functions

// DB returns a logger for database operations
func DB() Logger {
	return WithField("component", "db")
}

// Migration returns a logger for migration operations
func Migration() Logger {
	return WithField("component", "migration")
}

// CLI returns a logger for CLI operations
func CLI() Logger {
	return WithField("component", "cli")
}

// HTTP returns a logger for the HTTP server
func HTTP() Logger {
	return WithField("component", "http")
}

// GraphQL returns a logger for schema execution
func GraphQL() Logger {
	return WithField("component", "graphql")
}

// Events returns a logger for the event publisher
func Events() Logger {
	return WithField("component", "events")
}
