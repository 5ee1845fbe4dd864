package folio

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/views"
)

const rateLimitedMessage = "Too many messages, please try again later."

func (a *App) handleContact(c echo.Context) error {
	flashes := popFlashes(c, flashSuccess, flashError, flashEmail, flashMessage)
	return Render(c, a.Views.Contact(a.Config.viewSite(true), views.ContactData{
		Action:    "/contact",
		CSRFToken: CsrfToken(c),
		Success:   flashes[flashSuccess],
		Error:     flashes[flashError],
		Email:     flashes[flashEmail],
		Message:   flashes[flashMessage],
	}))
}

// handleContactSubmit forwards the form and redirects back to the form, which
// shows the outcome once.
func (a *App) handleContactSubmit(c echo.Context) error {
	var msg ContactMessage
	if err := c.Bind(&msg); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	msg.Normalize()

	fail := func(reason string) error {
		if err := addFlashes(c, map[string]string{flashError: reason, flashEmail: msg.Email, flashMessage: msg.Message}); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/contact")
	}

	ip := c.RealIP()
	if !a.contactLimiter.Check(ip) {
		a.Logger.Warn("contact rate limited", "ip", ip)
		return fail(rateLimitedMessage)
	}
	if err := msg.Validate(); err != nil {
		return fail(ValidationMessage(err))
	}

	a.contactLimiter.Record(ip)
	id, err := a.forwarder.Send(c.Request().Context(), msg)
	if err != nil {
		var cerr *ContactError
		switch {
		case errors.As(err, &cerr):
			a.Logger.Warn("contact rejected", "status", cerr.Status, "reason", cerr.Reason)
			if cerr.Reason != "" {
				return fail(cerr.Reason)
			}
			return fail("Your message could not be sent.")
		case errors.Is(err, ErrContactDisabled):
			return fail("The contact form is not available.")
		default:
			a.Logger.Error("contact forward failed", "error", err)
			return fail("Your message could not be sent.")
		}
	}

	a.Logger.Info("contact message forwarded", "submission_id", id)
	if err := addFlashes(c, map[string]string{flashSuccess: ContactSuccessMessage}); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/contact")
}
