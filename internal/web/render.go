package web

import (
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"sunrisestay/internal/auth"
	"sunrisestay/internal/user"
)

//go:embed templates/*.html
var templateFS embed.FS

type formatter interface {
	IsZero() bool
	Format(layout string) string
}

var funcs = template.FuncMap{
	"date": func(t formatter) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("Jan 2, 2006")
	},
	"upper": func(v interface{}) string {
		return strings.ToUpper(fmt.Sprint(v))
	},
	"title":      Title,
	"shortID":    ShortID,
	"pathEscape": url.PathEscape,
}

// Templates parses the embedded page templates.
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
}

// Render writes the named template with data plus the values every page uses.
func Render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["SignedIn"] = auth.IsSignedIn(c)
	data["Profile"] = user.ProfileFromContext(c)
	data["Path"] = c.Request.URL.Path
	data["Year"] = time.Now().Year()
	if _, ok := data["Flash"]; !ok {
		data["Flash"] = PopFlash(c)
	}
	c.HTML(status, name, data)
}

// ShortID is the booking reference shown to guests: the first 8 characters, upper-cased.
func ShortID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return strings.ToUpper(id)
}

// Title capitalises the first letter of a status or label.
func Title(v interface{}) string {
	s := fmt.Sprint(v)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
