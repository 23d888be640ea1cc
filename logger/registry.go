package logger

import "sync"

// components holds the loggers registered per engine component.
var components sync.Map // map[string]*Logger

// Register stores l as the logger for the named component.
func Register(name string, l *Logger) {
	components.Store(name, l)
}

// Get returns the logger registered for name. An unregistered name gets the
// global logger tagged with the component name.
func Get(name string) *Logger {
	if l, ok := components.Load(name); ok {
		return l.(*Logger)
	}
	return GetGlobalLogger().WithComponent(name)
}

// RegisterComponents registers base tagged with each component name,
// replacing loggers registered earlier under the same names.
func RegisterComponents(base *Logger, names ...string) {
	for _, name := range names {
		Register(name, base.WithComponent(name))
	}
}
