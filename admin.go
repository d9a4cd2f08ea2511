package siteforge

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, a.Views.Login(false, CsrfToken(c)))
	}
	return a.renderDashboard(c, c.QueryParam("msg"))
}

func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) == 1 {
		if err := setAdminSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	a.loginLimiter.Record(ip)
	return Render(c, a.Views.Login(true, CsrfToken(c)))
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func (a *App) renderDashboard(c echo.Context, msg string) error {
	records, err := a.Store.ListSections()
	if err != nil {
		return err
	}
	updated := make(map[string]string, len(records))
	for _, r := range records {
		updated[r.Key] = r.UpdatedAt
	}
	entries := make([]DashboardEntry, 0, len(a.sections))
	for _, key := range a.sectionOrder {
		entries = append(entries, DashboardEntry{
			Section:   a.sections[key],
			UpdatedAt: updated[key],
		})
	}
	return Render(c, a.Views.Dashboard(entries, msg, CsrfToken(c)))
}
