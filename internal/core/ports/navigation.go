package ports

// AuthChecker exposes the authentication predicate.
type AuthChecker interface {
	IsAuthenticated() bool
}

// TitleSink receives the window title for the current view.
type TitleSink interface {
	SetTitle(title string)
}
