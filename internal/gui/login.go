package gui

import (
	"errors"
	"strings"

	"activitytracker/internal/auth"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

type loginScreen struct {
	app *App

	username *widget.Entry
	password *widget.Entry
	box      *fyne.Container
}

func newLoginScreen(app *App) *loginScreen {
	s := &loginScreen{app: app}

	s.username = widget.NewEntry()
	s.username.SetPlaceHolder("Username")
	s.password = widget.NewPasswordEntry()
	s.password.SetPlaceHolder("Password")

	// Enter submits from either field.
	s.username.OnSubmitted = func(string) { s.login() }
	s.password.OnSubmitted = func(string) { s.login() }

	loginButton := widget.NewButton("Log in", s.login)
	loginButton.Importance = widget.HighImportance
	createButton := widget.NewButton("Create account", s.showCreateAccount)

	title := widget.NewLabelWithStyle(app.cfg.App.Title, fyne.TextAlignCenter, fyne.TextStyle{Bold: true})

	s.box = container.NewVBox(
		title,
		widget.NewSeparator(),
		s.username,
		s.password,
		loginButton,
		createButton,
	)
	return s
}

func (s *loginScreen) content() fyne.CanvasObject {
	return container.NewPadded(s.box)
}

func (s *loginScreen) login() {
	username := strings.TrimSpace(s.username.Text)
	password := strings.TrimSpace(s.password.Text)

	err := s.app.creds.Authenticate(username, password)
	switch {
	case err == nil:
		s.app.showTracking(username)
	case errors.Is(err, auth.ErrEmptyCredentials):
		dialog.ShowError(err, s.app.window)
	case errors.Is(err, auth.ErrUnknownUser):
		dialog.ShowError(errors.New("user not found, create an account first"), s.app.window)
	case errors.Is(err, auth.ErrWrongPassword):
		s.password.SetText("")
		dialog.ShowError(err, s.app.window)
	default:
		s.app.log.Error().Err(err).Str("component", "gui").Msg("authentication failed")
		dialog.ShowError(err, s.app.window)
	}
}

func (s *loginScreen) showCreateAccount() {
	username := widget.NewEntry()
	password := widget.NewPasswordEntry()
	confirm := widget.NewPasswordEntry()

	items := []*widget.FormItem{
		widget.NewFormItem("Username", username),
		widget.NewFormItem("Password", password),
		widget.NewFormItem("Confirm password", confirm),
	}

	dialog.ShowForm("Create account", "Create", "Cancel", items, func(confirmed bool) {
		if !confirmed {
			return
		}
		if password.Text != confirm.Text {
			dialog.ShowError(errors.New("password and confirmation do not match"), s.app.window)
			return
		}
		if err := s.app.creds.Register(strings.TrimSpace(username.Text), strings.TrimSpace(password.Text)); err != nil {
			dialog.ShowError(err, s.app.window)
			return
		}
		dialog.ShowInformation("Account created", "Account created, you can log in now.", s.app.window)
	}, s.app.window)
}
