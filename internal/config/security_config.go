// config/security_config.go
package config

type SecurityLevel int

const (
	SecurityPublic   SecurityLevel = iota // No authentication
	SecurityAccess                        // Any valid access token
	SecurityCustomer                      // Access token with customer role
	SecurityAdmin                         // Access token with admin role
)

// RouteSecurityConfig maps named HTTP routes to their required security level
var RouteSecurityConfig = map[string]SecurityLevel{
	// Auth - Public
	"auth.register": SecurityPublic,
	"auth.login":    SecurityPublic,
	"health":        SecurityPublic,

	// Users
	"users.me":         SecurityAccess,
	"users.suspend":    SecurityAdmin,
	"users.reactivate": SecurityAdmin,

	// Cars
	"cars.available":  SecurityAccess,
	"cars.list":       SecurityAdmin,
	"cars.create":     SecurityAdmin,
	"cars.update":     SecurityAdmin,
	"cars.set_status": SecurityAdmin,

	// Bookings - Customer
	"bookings.create": SecurityCustomer,
	"bookings.mine":   SecurityCustomer,

	// Bookings - Any authenticated actor (ownership checked in handler)
	"bookings.get":           SecurityAccess,
	"bookings.cancel":        SecurityAccess,
	"bookings.substitutions": SecurityAccess,

	// Bookings - Admin
	"bookings.pending": SecurityAdmin,
	"bookings.approve": SecurityAdmin,
	"bookings.reject":  SecurityAdmin,
	"bookings.pickup":  SecurityAdmin,
	"bookings.return":  SecurityAdmin,

	// Audit
	"audit.recent": SecurityAdmin,
}

// GetSecurityLevel returns the security level for a named route
func GetSecurityLevel(route string) SecurityLevel {
	if level, exists := RouteSecurityConfig[route]; exists {
		return level
	}
	// Default to highest security for unknown routes
	return SecurityAdmin
}
