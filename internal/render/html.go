package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"time"
)

var htmlTemplates = template.Must(template.New("fragment").Parse(`
{{- define "fragment" -}}
<div class="task-item priority-{{ .Priority }}{{ if .Completed }} completed{{ end }}" data-task-id="{{ .ID }}">
  <h4>
    <input type="checkbox" id="task-complete-checkbox-{{ .ID }}" class="task-complete-checkbox" data-task-id="{{ .ID }}"{{ if .Completed }} checked{{ end }}>
    {{ .Title }}
  </h4>
  {{- if .Description }}
  <p>{{ .Description }}</p>
  {{- end }}
  <div class="task-meta">
    <span class="task-priority">{{ .PriorityLabel }}</span>
    <span class="task-created">{{ .Created }}</span>
  </div>
  {{- if .Deadline }}
  <div class="task-deadline">Deadline: {{ .Deadline }}</div>
  {{- end }}
</div>
{{ end -}}

{{- define "document" -}}
<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>{{ .Title }}</title>
  <style>
    body { font-family: sans-serif; max-width: 48rem; margin: 2rem auto; }
    .task-item { border-left: 4px solid #ccc; padding: 0.5rem 1rem; margin-bottom: 1rem; }
    .task-item.priority-1 { border-color: #e53935; }
    .task-item.priority-2 { border-color: #fdd835; }
    .task-item.completed h4 { text-decoration: line-through; color: #888; }
    .task-meta, .task-deadline { font-size: 0.8em; color: #666; }
  </style>
</head>
<body>
  <h1>{{ .Title }}</h1>
  <p class="generated">Exported {{ .Generated }}</p>
  <div id="tasksContainer">
  {{- range .Fragments }}
  {{ template "fragment" . }}
  {{- else }}
  <p class="text-center">No tasks found.</p>
  {{- end }}
  </div>
</body>
</html>
{{ end -}}
`))

// HTML renders the fragment as an escaped HTML snippet.
func (f Fragment) HTML() (string, error) {
	var buf bytes.Buffer
	if err := htmlTemplates.ExecuteTemplate(&buf, "fragment", f); err != nil {
		return "", fmt.Errorf("render fragment %s: %w", f.ID, err)
	}
	return buf.String(), nil
}

// Document describes a full HTML export.
type Document struct {
	Title     string
	Generated time.Time
	Fragments []Fragment
}

// WriteHTML writes a standalone HTML page listing the fragments in order.
func WriteHTML(w io.Writer, doc Document) error {
	if doc.Title == "" {
		doc.Title = "Tasks"
	}
	if doc.Generated.IsZero() {
		doc.Generated = time.Now()
	}

	data := struct {
		Title     string
		Generated string
		Fragments []Fragment
	}{
		Title:     doc.Title,
		Generated: doc.Generated.Format(DateLayout),
		Fragments: doc.Fragments,
	}

	if err := htmlTemplates.ExecuteTemplate(w, "document", data); err != nil {
		return fmt.Errorf("render document: %w", err)
	}
	return nil
}
