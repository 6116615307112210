package gui

import (
	"context"
	"fmt"
	"time"

	"activitytracker/internal/db/models"
	"activitytracker/internal/report"
	"activitytracker/internal/tracker"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

const callTimeout = 10 * time.Second

type trackingScreen struct {
	app    *App
	userID string
	ctx    context.Context

	categories   *widget.RadioGroup
	description  *widget.Entry
	startButton  *widget.Button
	finishButton *widget.Button
	statusLabel  *widget.Label
	activeLabel  *widget.Label
	elapsedLabel *widget.Label
	activeBox    *fyne.Container
	box          *fyne.Container

	// current is only touched on the UI goroutine (inside fyne.Do or
	// widget callbacks).
	current *models.Activity
}

func newTrackingScreen(app *App, userID string) *trackingScreen {
	s := &trackingScreen{app: app, userID: userID}

	s.categories = widget.NewRadioGroup(app.cfg.App.Categories, nil)
	s.description = widget.NewMultiLineEntry()
	s.description.SetPlaceHolder("Description (optional)")
	s.description.Wrapping = fyne.TextWrapWord

	s.startButton = widget.NewButton("Start", s.onStart)
	s.startButton.Importance = widget.HighImportance
	s.finishButton = widget.NewButton("Finish", s.onFinish)
	s.finishButton.Disable()

	s.statusLabel = widget.NewLabel("Ready to start.")
	s.activeLabel = widget.NewLabel("")
	s.elapsedLabel = widget.NewLabel("")
	s.activeBox = container.NewHBox(s.activeLabel, s.elapsedLabel)
	s.activeBox.Hide()

	header := container.NewHBox(
		widget.NewLabelWithStyle(userID, fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewButton("Log out", s.onLogout),
	)

	s.box = container.NewBorder(
		container.NewVBox(header, widget.NewSeparator(), s.activeBox),
		container.NewVBox(
			s.description,
			container.NewGridWithColumns(2, s.startButton, s.finishButton),
			s.statusLabel,
		),
		nil, nil,
		container.NewVScroll(s.categories),
	)
	return s
}

func (s *trackingScreen) content() fyne.CanvasObject {
	return container.NewPadded(s.box)
}

// start resumes any open session and launches the screen's background work.
// sessionCtx is cancelled on logout and shutdown.
func (s *trackingScreen) start(sessionCtx context.Context) {
	s.ctx = sessionCtx
	s.resume()

	go s.runElapsedTicker(sessionCtx)

	finalizer := tracker.NewAutoFinalizer(
		s.app.svc, s.userID, s.app.cfg.App.AutoFinalize, s.app.log,
		func(finished *models.Activity, slot string) {
			fyne.Do(func() {
				s.setRunning(nil)
				dialog.ShowInformation("Session closed",
					fmt.Sprintf("Session closed automatically at %s.", slot), s.app.window)
			})
		},
	)
	go finalizer.Run(sessionCtx)
}

// resume restores the in-progress session after login, if one exists.
func (s *trackingScreen) resume() {
	go func() {
		ctx, cancel := context.WithTimeout(s.ctx, callTimeout)
		defer cancel()

		open, err := s.app.svc.Resume(ctx, s.userID)
		fyne.Do(func() {
			if err != nil {
				s.app.log.Error().Err(err).Str("component", "gui").Msg("resume lookup failed")
				s.statusLabel.SetText("Could not check for a running session.")
				return
			}
			if open == nil {
				return
			}
			s.categories.SetSelected(open.Category)
			s.description.SetText(open.Description)
			s.setRunning(open)
			s.statusLabel.SetText("Resuming: " + open.Category)
		})
	}()
}

func (s *trackingScreen) onStart() {
	category := s.categories.Selected
	if category == "" {
		dialog.ShowError(tracker.ErrNoCategory, s.app.window)
		return
	}
	description := s.description.Text

	s.startButton.Disable()
	go func() {
		ctx, cancel := context.WithTimeout(s.ctx, callTimeout)
		defer cancel()

		activity, err := s.app.svc.Start(ctx, s.userID, category, description, nil)
		fyne.Do(func() {
			if err != nil {
				s.startButton.Enable()
				dialog.ShowError(fmt.Errorf("failed to start session: %w", err), s.app.window)
				return
			}
			s.setRunning(activity)
			s.statusLabel.SetText("In progress: " + activity.Category)
		})
	}()
}

func (s *trackingScreen) onFinish() {
	if s.current == nil {
		dialog.ShowError(tracker.ErrNoOpenSession, s.app.window)
		return
	}
	id := s.current.ID

	s.finishButton.Disable()
	go func() {
		ctx, cancel := context.WithTimeout(s.ctx, callTimeout)
		defer cancel()

		finished, err := s.app.svc.Finish(ctx, id)
		fyne.Do(func() {
			if err != nil {
				s.finishButton.Enable()
				dialog.ShowError(fmt.Errorf("failed to finish session: %w", err), s.app.window)
				return
			}
			s.setRunning(nil)
			dialog.ShowInformation("Session finished",
				fmt.Sprintf("Time spent: %s", report.FormatDuration(finished.Duration(time.Now()))),
				s.app.window)
		})
	}()
}

func (s *trackingScreen) onLogout() {
	s.app.log.Info().Str("component", "gui").Str("user", s.userID).Msg("user logged out")
	s.app.ShowLogin()
}

// setRunning switches the controls between the idle and the in-progress
// state. A running session locks the category and description until it is
// finished, mirroring the single-open-session rule.
func (s *trackingScreen) setRunning(activity *models.Activity) {
	s.current = activity
	if activity != nil {
		s.startButton.Disable()
		s.finishButton.Enable()
		s.categories.Disable()
		s.description.Disable()
		s.activeLabel.SetText("In progress: " + activity.Category)
		s.activeBox.Show()
		return
	}
	s.startButton.Enable()
	s.finishButton.Disable()
	s.categories.Enable()
	s.categories.SetSelected("")
	s.description.Enable()
	s.description.SetText("")
	s.statusLabel.SetText("Ready to start.")
	s.activeLabel.SetText("")
	s.elapsedLabel.SetText("")
	s.activeBox.Hide()
}

// runElapsedTicker refreshes the elapsed-time label once a second while a
// session is running.
func (s *trackingScreen) runElapsedTicker(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			fyne.Do(func() {
				if s.current == nil {
					return
				}
				s.elapsedLabel.SetText(report.FormatDuration(time.Since(s.current.StartTime)))
			})
		case <-ctx.Done():
			return
		}
	}
}
