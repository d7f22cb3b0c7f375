package cli

import (
	"text/template"
)

const submissionTemplate = `
=== Submission Details ===

ID:             {{.ID}}
Status:         {{.Status}}
Type:           {{.Type}}
Visit date:     {{.VisitDate}}
Half month:     {{.HalfMonth}}
Submitted:      {{.CreatedAt.Local.Format "2006-01-02 15:04"}}

Technician:     {{.TechnicianName}}
{{- if .TechnicianCity }} ({{.TechnicianCity}}){{end}}

Device:
  Interaction:  {{.DeviceInfo.InteractionID}}
  Cost center:  {{.DeviceInfo.GFMCostCenter}}
  City:         {{.DeviceInfo.City}}
  Region:       {{.DeviceInfo.Region}}
{{- if .PDFURL }}

Report PDF:     {{.PDFURL}}
{{- end}}
{{- if .Remarks }}

Remarks:
---
{{.Remarks}}
---
{{- end}}
`

const supervisorStatsTemplate = `
=== Submission Statistics ===

Total:    {{.TotalSubmissions}}
Pending:  {{.PendingSubmissions}}
Approved: {{.ApprovedSubmissions}}
Rejected: {{.RejectedSubmissions}}
`

const hostStatsTemplate = `
=== Dashboard Statistics ===

Technicians: {{.TotalTechnicians}}
Devices:     {{.TotalDevices}}
{{- if .TechniciansWithDevices }}

Devices per technician:
{{- range .TechniciansWithDevices }}
  {{.Username}}{{if .City}} ({{.City}}){{end}}: {{.DeviceCount}}
{{- end}}
{{- end}}
`

const technicianTemplate = `
=== Technician Created ===

ID:       {{.ID}}
Username: {{.Username}}
City:     {{.City}}
Role:     {{.Role}}
`

const submitTemplate = `
✓ {{.Message}}

Submission ID: {{.Submission.ID}}
Device:        {{.Submission.DeviceInfo.InteractionID}}
Visit date:    {{.Submission.VisitDate}} (half {{.Submission.HalfMonth}})
Status:        {{.Submission.Status}}
`

const uploadTemplate = `
=== Device List Uploaded ===

Upload ID:       {{.UploadID}}
File:            {{.FileName}}
Technician:      {{.Technician.Username}}{{if .Technician.City}} ({{.Technician.City}}){{end}}
Rows:            {{.TotalRows}}
Devices created: {{.DevicesCreated}}
`

// Шаблоны разбираются один раз, ошибка в шаблоне ловится тестами
var (
	submissionTmpl      = template.Must(template.New("submission").Parse(submissionTemplate))
	supervisorStatsTmpl = template.Must(template.New("supervisor-stats").Parse(supervisorStatsTemplate))
	hostStatsTmpl       = template.Must(template.New("host-stats").Parse(hostStatsTemplate))
	technicianTmpl      = template.Must(template.New("technician").Parse(technicianTemplate))
	submitTmpl          = template.Must(template.New("submit").Parse(submitTemplate))
	uploadTmpl          = template.Must(template.New("upload").Parse(uploadTemplate))
)
