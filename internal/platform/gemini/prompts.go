package gemini

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

var prompts = template.Must(template.New("prompts").Funcs(template.FuncMap{
	"join": strings.Join,
}).Parse(`
{{define "tip"}}Gere uma frase motivacional curta e inspiradora sobre estudos e foco. Responda apenas com a frase, sem aspas.{{end}}

{{define "strategy"}}Sou estudante e estou estudando "{{.Subject}}".
{{- if .Topics}} Os tópicos são: {{join .Topics ", "}}.{{end}}
Me dê 3 dicas práticas e objetivas de como estudar esse conteúdo. Seja breve.{{end}}

{{define "mentor"}}Você é um mentor de estudos gentil e objetivo dentro de um aplicativo de foco.
{{- if .Subjects}} O estudante está estudando: {{join .Subjects ", "}}.{{end}}
Responda em português, em poucos parágrafos, com conselhos práticos.{{end}}
`))

type strategyData struct {
	Subject string
	Topics  []string
}

type mentorData struct {
	Subjects []string
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := prompts.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s prompt: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}
