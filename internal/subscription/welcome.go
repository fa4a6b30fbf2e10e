package subscription

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
)

//go:embed templates/welcome.html
var welcomeTemplateSource string

var welcomeTemplate = template.Must(template.New("welcome").Parse(welcomeTemplateSource))

type WelcomeData struct {
	AppName     string
	Description string
	URL         string
}

func RenderWelcome(data WelcomeData) (string, error) {
	var buf bytes.Buffer
	if err := welcomeTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render welcome email: %w", err)
	}
	return buf.String(), nil
}
