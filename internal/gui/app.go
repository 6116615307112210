// Package gui implements the Fyne shell: a login screen backed by the local
// credential store and a tracking screen wired to the session service.
package gui

import (
	"context"

	"activitytracker/internal/auth"
	"activitytracker/internal/config"
	"activitytracker/internal/tracker"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"github.com/rs/zerolog"
)

const appID = "io.github.activitytracker"

// App owns the window and switches between the two screens.
type App struct {
	fyneApp fyne.App
	window  fyne.Window
	cfg     *config.Config
	svc     *tracker.Service
	creds   *auth.Store
	log     zerolog.Logger

	ctx context.Context

	// cancelSession stops the background work (elapsed ticker, auto
	// finalizer) of the active tracking screen.
	cancelSession context.CancelFunc
}

// New builds the application window. ctx bounds every backend call issued by
// the GUI.
func New(ctx context.Context, cfg *config.Config, svc *tracker.Service, creds *auth.Store, log zerolog.Logger) *App {
	a := fyneapp.NewWithID(appID)
	window := a.NewWindow(cfg.App.Title)
	window.Resize(fyne.NewSize(520, 680))
	window.CenterOnScreen()

	return &App{
		fyneApp: a,
		window:  window,
		cfg:     cfg,
		svc:     svc,
		creds:   creds,
		log:     log,
		ctx:     ctx,
	}
}

// Window exposes the main window so main can install a close intercept.
func (a *App) Window() fyne.Window {
	return a.window
}

// Run shows the login screen and blocks in the Fyne event loop.
func (a *App) Run() {
	a.ShowLogin()
	a.window.Show()
	a.fyneApp.Run()
}

// Quit leaves the event loop.
func (a *App) Quit() {
	a.stopSession()
	a.fyneApp.Quit()
}

// ShowLogin switches to the login screen, dropping any logged-in state.
func (a *App) ShowLogin() {
	a.stopSession()
	screen := newLoginScreen(a)
	a.window.SetContent(screen.content())
}

// showTracking switches to the tracking screen for the authenticated user
// and starts its background work.
func (a *App) showTracking(userID string) {
	a.stopSession()
	sessionCtx, cancel := context.WithCancel(a.ctx)
	a.cancelSession = cancel

	screen := newTrackingScreen(a, userID)
	a.window.SetContent(screen.content())
	screen.start(sessionCtx)

	a.log.Info().Str("component", "gui").Str("user", userID).Msg("user logged in")
}

func (a *App) stopSession() {
	if a.cancelSession != nil {
		a.cancelSession()
		a.cancelSession = nil
	}
}
