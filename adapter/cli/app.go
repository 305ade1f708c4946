package cli

import (
	"errors"

	"github.com/felixgeelhaar/ordo/internal/tasklist/application/drag"
	"github.com/felixgeelhaar/ordo/internal/tasklist/application/synchronizer"
)

// ErrNotInitialized is returned by commands run without a task store.
var ErrNotInitialized = errors.New("application not initialized - task store required")

// App holds the CLI application dependencies.
type App struct {
	Synchronizer *synchronizer.Synchronizer
	EditDialog   *synchronizer.EditDialog
	Drag         *drag.Session
}

// NewApp creates a new CLI application.
func NewApp(sync *synchronizer.Synchronizer, dialog *synchronizer.EditDialog, session *drag.Session) *App {
	return &App{
		Synchronizer: sync,
		EditDialog:   dialog,
		Drag:         session,
	}
}

// Ready returns ErrNotInitialized when the app or its synchronizer is missing.
func (a *App) Ready() error {
	if a == nil || a.Synchronizer == nil {
		return ErrNotInitialized
	}
	return nil
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}
