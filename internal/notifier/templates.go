package notifier

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

// Template keys for the four reply variants.
const (
	TemplateFail       = "fail"
	TemplateOutOfStock = "out-of-stock"
	TemplateSuccess    = "success"
	TemplateDailyLimit = "daily-limit"
)

// Built-in reply bodies, overridable per key by dropping a
// "<key>.template" file into the templates directory.
var defaults = map[string]string{
	TemplateFail: "Sorry @{{.Invoker}}, you need to hold at least " +
		"{{.MinBalance}} {{.Token}} to send gifts with this bot.",
	TemplateOutOfStock: "The {{.Token}} jar is empty! The bot is out of " +
		"tokens right now, please try again later.",
	TemplateSuccess: "Hey @{{.Recipient}}, @{{.Invoker}} just sent you " +
		"{{.Amount}} {{.Token}}! Gifts today: {{.Count}}/{{.Max}}.",
	TemplateDailyLimit: "Sorry @{{.Invoker}}, you already sent your " +
		"{{.Max}} {{.Token}} gifts for today.",
}

// Renderer produces reply bodies from a template key and named values.
type Renderer struct {
	templates map[string]*template.Template
}

// NewRenderer loads templates, preferring files under dir over the
// built-in defaults. An empty dir uses the defaults only.
func NewRenderer(dir string) (*Renderer, error) {
	r := &Renderer{templates: make(map[string]*template.Template)}
	for key, text := range defaults {
		if dir != "" {
			path := filepath.Join(dir, key+".template")
			if data, err := os.ReadFile(path); err == nil {
				text = strings.TrimRight(string(data), "\n")
			} else if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read template %s: %w", path, err)
			}
		}
		tmpl, err := template.New(key).Parse(text)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", key, err)
		}
		r.templates[key] = tmpl
	}
	return r, nil
}

// Render fills the named template with the given values.
func (r *Renderer) Render(key string, values map[string]any) (string, error) {
	tmpl, ok := r.templates[key]
	if !ok {
		return "", fmt.Errorf("unknown template key %q", key)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, values); err != nil {
		return "", fmt.Errorf("render template %s: %w", key, err)
	}
	return b.String(), nil
}
