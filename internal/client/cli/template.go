package cli

const taskTemplate = `
=== Task Details ===

Title:     {{.Task.Title}}
ID:        {{.Task.ID}}
List:      {{.ListName}}
Status:    {{if .Task.Completed}}completed{{with .Task.CompletedAt}} at {{.Format "2006-01-02 15:04"}}{{end}}{{else}}open{{end}}
{{- with .Due }}
Due:       {{.}}
{{- end}}
{{- if .Task.Priority }}
Priority:  {{.Task.Priority}}
{{- end}}
{{- if .Labels }}
Labels:    {{join .Labels ", "}}
{{- end}}
{{- with .Task.ParentID }}
Parent:    {{.}}
{{- end}}
{{- if .Task.Description }}

{{.Task.Description}}
{{- end}}
{{- if .Pending }}

Not yet confirmed by the server.
{{- end}}
`

const actionTemplate = `
=== Queued Action ===

ID:        {{.ID}}
Kind:      {{.Kind}}
Status:    {{.Status}}
{{- if .RetryCount }}
Retries:   {{.RetryCount}}
{{- end}}
{{- if .Error }}
Error:     {{.Error}}
{{- end}}
Payload:   {{printf "%s" .Payload}}
{{- with .Conflict }}

Server has: {{printf "%s" .ServerData}}
You sent:   {{printf "%s" .LocalData}}
{{- end}}
`

const conflictTemplate = `
--- Conflict #{{.ID}} ({{.EntityType}}) ---
Local:     {{printf "%s" .LocalPayload}}
{{.Provider}}: {{printf "%s" .ExternalPayload}}
Detected:  {{.CreatedAt.Format "2006-01-02 15:04"}}
`
