package ports

import "context"

// ExpiryHandler is notified when the backend reports the session as expired.
// The gateway holds it through late binding so it never imports the session layer.
type ExpiryHandler interface {
	SessionExpired(ctx context.Context)
}

// ExpiryHandlerFunc adapts a function to ExpiryHandler.
type ExpiryHandlerFunc func(ctx context.Context)

func (f ExpiryHandlerFunc) SessionExpired(ctx context.Context) {
	f(ctx)
}

// ExpiryNotifier accepts the expiry handler registration.
type ExpiryNotifier interface {
	RegisterExpiryHandler(h ExpiryHandler)
}

// Locator moves the application to another location.
type Locator interface {
	Redirect(path string)
}

// LocatorFunc adapts a function to Locator.
type LocatorFunc func(path string)

func (f LocatorFunc) Redirect(path string) {
	f(path)
}
