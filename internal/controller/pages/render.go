package pages

import (
	"fmt"
	"html/template"
	"time"

	"github.com/Freeeeeet/tutor_market/web"
)

// LoadTemplates parses the embedded page templates
func LoadTemplates() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(templateFuncs()).ParseFS(web.Templates, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tmpl, nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"money":    formatMoney,
		"datetime": formatDateTime,
	}
}

// formatMoney форматирует цену в центах
func formatMoney(cents int) string {
	if cents <= 0 {
		return "Free"
	}
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02 Jan 2006 15:04")
}
