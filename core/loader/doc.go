// Package loader mounts the HTTP features of the service.
//
// Each feature implements Feature. The Manager keeps them in registration
// order and LoadAll mounts the enabled ones:
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
package loader
