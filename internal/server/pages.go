package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"sunrisestay/internal/web"
)

type service struct {
	Name        string
	Description string
	Hours       string
}

var hotelServices = []service{
	{Name: "Restaurant & Bar", Description: "Breakfast, lunch and dinner with a seasonal menu and ocean views.", Hours: "Daily 6:30 AM - 11:00 PM"},
	{Name: "Spa & Wellness", Description: "Massages, facials and a heated plunge pool.", Hours: "Daily 9:00 AM - 8:00 PM"},
	{Name: "Fitness Center", Description: "Cardio and strength equipment open to all guests.", Hours: "24 hours"},
	{Name: "Swimming Pool", Description: "Outdoor infinity pool with loungers and towel service.", Hours: "Daily 7:00 AM - 9:00 PM"},
	{Name: "Airport Transfer", Description: "Private car to and from the airport on request."},
	{Name: "Concierge", Description: "Tours, dinner reservations and local recommendations.", Hours: "24 hours"},
}

type pages struct {
	publishableKey string
}

func newPages(publishableKey string) *pages {
	return &pages{publishableKey: publishableKey}
}

func (p *pages) Services(c *gin.Context) {
	web.Render(c, http.StatusOK, "services.html", gin.H{
		"Services": hotelServices,
	})
}

// SignIn hosts the authentication provider's widget, which sends the guest
// back to redirect_url once signed in.
func (p *pages) SignIn(c *gin.Context) {
	web.Render(c, http.StatusOK, "sign_in.html", gin.H{
		"PublishableKey": p.publishableKey,
		"RedirectURL":    localRedirect(c.Query("redirect_url")),
	})
}

func (p *pages) NotFound(c *gin.Context) {
	web.Render(c, http.StatusNotFound, "error.html", gin.H{
		"Status":  http.StatusNotFound,
		"Message": "The page you're looking for doesn't exist.",
	})
}

// localRedirect only lets through paths on this site.
func localRedirect(target string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return "/"
	}
	return target
}
