package notify

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	"github.com/c360/workplan/resource"
)

// Template subjects.
const (
	subjectAssigned = "WellPlanned - Nueva Asignación"
	subjectCanceled = "WellPlanned - Asignación Cancelada"
)

type templateData struct {
	Owner      string
	ClientName string
	ClientID   string
	SDM        string
	StartDate  string
	EndDate    string
	Year       int
}

var assignedText = template.Must(template.New("assigned").Parse(`Hola {{.Owner}},

Se le ha asignado un Well-Architected Review para el cliente {{.ClientName}}.

- ID Cliente: {{.ClientID}}
- SDM: {{.SDM}}
- Fecha Inicio: {{.StartDate}}
- Fecha Fin: {{.EndDate}}

Este es un correo automático. Por favor no responder.
`))

var canceledText = template.Must(template.New("canceled").Parse(`Hola {{.Owner}},

Su asignación al Well-Architected Review del cliente {{.ClientName}} ha sido cancelada.

- ID Cliente: {{.ClientID}}
- SDM: {{.SDM}}
- Fecha Inicio: {{.StartDate}}
- Fecha Fin: {{.EndDate}}

Este es un correo automático. Por favor no responder.
`))

var bodyHTML = template.Must(template.New("html").Parse(`<html>
  <body style="margin:0; padding:0; font-family:'Segoe UI', Arial, Helvetica, sans-serif; background-color:#f4f6f8; color:#1f2937;">
    <table role="presentation" width="100%" cellpadding="0" cellspacing="0" border="0">
      <tr><td align="center" style="padding:40px 10px;">
        <table width="600" cellpadding="0" cellspacing="0" border="0" style="background:#fff; border-radius:10px; overflow:hidden;">
          <tr>
            <td style="background:#111827; padding:30px; text-align:center; color:#fff;">
              <h1 style="margin:0; font-size:26px; color:#facc15;">WellPlanned</h1>
              <p style="margin:6px 0 0 0; font-size:16px;">{{.Headline}}</p>
            </td>
          </tr>
          <tr>
            <td style="padding:30px;">
              <p>Hola <strong>{{.Data.Owner}}</strong>,</p>
              <p>{{.Lead}}</p>
              <table width="100%" cellpadding="0" cellspacing="0" style="background:#f1f5f9; border-radius:6px; margin-top:20px;">
                <tr><td style="padding:10px;"><strong>ID Cliente:</strong> {{.Data.ClientID}}</td></tr>
                <tr><td style="padding:10px;"><strong>SDM:</strong> {{.Data.SDM}}</td></tr>
                <tr><td style="padding:10px;"><strong>Fecha Inicio:</strong> {{.Data.StartDate}}</td></tr>
                <tr><td style="padding:10px;"><strong>Fecha Fin:</strong> {{.Data.EndDate}}</td></tr>
              </table>
              <p style="color:#9ca3af; font-size:13px; text-align:center; margin-top:20px;">
                Este es un correo automático. Por favor no responder.
              </p>
            </td>
          </tr>
          <tr>
            <td style="background:#f9fafb; padding:20px; text-align:center; font-size:12px; color:#9ca3af;">
              &copy; {{.Data.Year}} WellPlanned
            </td>
          </tr>
        </table>
      </td></tr>
    </table>
  </body>
</html>`))

// Render builds the message for kind addressed to the workload's owner.
func Render(kind Kind, w resource.Workload, clientName string) (Message, error) {
	data := templateData{
		Owner:      w.Owner,
		ClientName: clientName,
		ClientID:   w.ClientID,
		SDM:        w.SDM,
		StartDate:  w.StartDate,
		EndDate:    w.EndDate,
		Year:       time.Now().Year(),
	}

	var subject, headline, lead string
	var body *template.Template
	switch kind {
	case KindAssigned:
		subject = subjectAssigned
		headline = "Nueva carga de trabajo asignada"
		lead = fmt.Sprintf("Se le ha asignado un <strong>Well-Architected Review</strong> para <strong>%s</strong>.", clientName)
		body = assignedText
	case KindCanceled:
		subject = subjectCanceled
		headline = "Asignación cancelada"
		lead = fmt.Sprintf("Su asignación al Well-Architected Review de <strong>%s</strong> ha sido cancelada.", clientName)
		body = canceledText
	default:
		return Message{}, fmt.Errorf("unknown notification kind %q", kind)
	}

	var text bytes.Buffer
	if err := body.Execute(&text, data); err != nil {
		return Message{}, fmt.Errorf("render text body: %w", err)
	}

	var html bytes.Buffer
	err := bodyHTML.Execute(&html, struct {
		Headline string
		Lead     string
		Data     templateData
	}{headline, lead, data})
	if err != nil {
		return Message{}, fmt.Errorf("render html body: %w", err)
	}

	return Message{
		To:      w.Owner,
		Kind:    kind,
		Subject: subject,
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}
