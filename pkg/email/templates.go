package email

import (
	"bytes"
	"fmt"
	"html/template"
)

type OrderCreatedData struct {
	ProviderName  string
	OrderNumber   string
	CompanyName   string
	CandidateName string
	ScheduledAt   string
	Services      []string
	Total         string
}

type CertificateIssuedData struct {
	CompanyName   string
	CandidateName string
	Concept       string
	Code          string
	ValidUntil    string
}

type ExpiringItem struct {
	CandidateName string
	Code          string
	ValidUntil    string
}

type ExpiringCertificatesData struct {
	CompanyName string
	Days        int
	Items       []ExpiringItem
}

type StaleItem struct {
	Title     string
	Company   string
	CreatedAt string
}

type StaleSolicitudesData struct {
	Hours int
	Items []StaleItem
}

const layout = `{{define "layout"}}<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #0F766E; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background: #f9f9f9; }
        .label { font-weight: bold; color: #555; }
        table { width: 100%; border-collapse: collapse; }
        td, th { padding: 6px; border-bottom: 1px solid #ddd; text-align: left; }
        .footer { text-align: center; padding: 20px; color: #888; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header"><h1>{{template "title" .}}</h1></div>
        <div class="content">{{template "body" .}}</div>
        <div class="footer"><p>Mensaje automático de Salud Ocupacional. No responda a este correo.</p></div>
    </div>
</body>
</html>{{end}}`

var templates = map[string]string{
	"order_created": `{{define "title"}}Nueva orden de servicio{{end}}
{{define "body"}}
<p>Hola {{.ProviderName}},</p>
<p>Se ha generado la orden <span class="label">{{.OrderNumber}}</span> de {{.CompanyName}} para {{.CandidateName}}.</p>
{{if .ScheduledAt}}<p>Fecha programada: {{.ScheduledAt}}</p>{{end}}
<table>{{range .Services}}<tr><td>{{.}}</td></tr>{{end}}</table>
<p class="label">Total: {{.Total}}</p>
{{end}}`,
	"certificate_issued": `{{define "title"}}Certificado emitido{{end}}
{{define "body"}}
<p>{{.CompanyName}},</p>
<p>Se emitió el certificado de aptitud de {{.CandidateName}} con concepto <span class="label">{{.Concept}}</span>.</p>
<p>Código de verificación: {{.Code}}<br>Vigente hasta: {{.ValidUntil}}</p>
{{end}}`,
	"certificates_expiring": `{{define "title"}}Certificados próximos a vencer{{end}}
{{define "body"}}
<p>{{.CompanyName}}, los siguientes certificados vencen en los próximos {{.Days}} días:</p>
<table><tr><th>Trabajador</th><th>Código</th><th>Vence</th></tr>
{{range .Items}}<tr><td>{{.CandidateName}}</td><td>{{.Code}}</td><td>{{.ValidUntil}}</td></tr>{{end}}
</table>
{{end}}`,
	"stale_solicitudes": `{{define "title"}}Solicitudes pendientes{{end}}
{{define "body"}}
<p>Hay {{len .Items}} solicitudes pendientes hace más de {{.Hours}} horas:</p>
<table><tr><th>Solicitud</th><th>Empresa</th><th>Creada</th></tr>
{{range .Items}}<tr><td>{{.Title}}</td><td>{{.Company}}</td><td>{{.CreatedAt}}</td></tr>{{end}}
</table>
{{end}}`,
}

var subjects = map[string]string{
	"order_created":         "Nueva orden de servicio %s",
	"certificate_issued":    "Certificado emitido %s",
	"certificates_expiring": "Certificados próximos a vencer%s",
	"stale_solicitudes":     "Solicitudes pendientes%s",
}

var parsed = func() map[string]*template.Template {
	out := make(map[string]*template.Template, len(templates))
	for name, body := range templates {
		t := template.Must(template.New(name).Parse(layout))
		out[name] = template.Must(t.Parse(body))
	}
	return out
}()

func render(name, subjectArg string, data any) (Message, error) {
	tmpl, ok := parsed[name]
	if !ok {
		return Message{}, fmt.Errorf("unknown template %q", name)
	}
	var body bytes.Buffer
	if err := tmpl.ExecuteTemplate(&body, "layout", data); err != nil {
		return Message{}, fmt.Errorf("failed to execute email template: %w", err)
	}
	return Message{
		Subject: fmt.Sprintf(subjects[name], subjectArg),
		HTML:    body.String(),
	}, nil
}

func OrderCreated(to string, data OrderCreatedData) (Message, error) {
	msg, err := render("order_created", data.OrderNumber, data)
	msg.To = []string{to}
	return msg, err
}

func CertificateIssued(to string, data CertificateIssuedData) (Message, error) {
	msg, err := render("certificate_issued", data.Code, data)
	msg.To = []string{to}
	return msg, err
}

func CertificatesExpiring(to string, data ExpiringCertificatesData) (Message, error) {
	msg, err := render("certificates_expiring", "", data)
	msg.To = []string{to}
	return msg, err
}

func StaleSolicitudes(to string, data StaleSolicitudesData) (Message, error) {
	msg, err := render("stale_solicitudes", "", data)
	msg.To = []string{to}
	return msg, err
}
