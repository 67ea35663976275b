package output

import (
	"html/template"
	"io"
	"sort"
	"time"

	"github.com/selimozcann/URLTester/internal/model"
)

// Summary contains counters for the HTML summary section.
type Summary struct {
	Total  int
	Passed int
	Failed int
	Errors int
}

// PageData provides the full context for the HTML report.
type PageData struct {
	Title         string
	GeneratedAt   time.Time
	Params        map[string]string
	OrderedParams []Param
	Summary       Summary
	Rows          []Row
	Errors        []string
}

// Param represents a rendered CLI argument/value pair.
type Param struct {
	Key   string
	Value string
}

// BuildSummary derives high level counters from a completed run.
func BuildSummary(records []*model.Record, errs []model.ErrorMessage) Summary {
	sum := Summary{Total: len(records), Errors: len(errs)}
	for _, rec := range records {
		if rec.Failed {
			sum.Failed++
		} else {
			sum.Passed++
		}
	}
	return sum
}

// BuildPage assembles the HTML report context.
func BuildPage(title string, records []*model.Record, errs []model.ErrorMessage, params map[string]string) PageData {
	rows := make([]Row, len(records))
	for i, rec := range records {
		rows[i] = BuildRow(i+1, rec)
	}
	return PageData{
		Title:       title,
		GeneratedAt: time.Now().UTC(),
		Params:      params,
		Summary:     BuildSummary(records, errs),
		Rows:        rows,
		Errors:      FormatErrors(errs),
	}
}

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"formatTime": func(t time.Time) string { return t.UTC().Format(time.RFC3339) },
}).Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
:root { color-scheme: light dark; }
body { font-family: system-ui, -apple-system, Segoe UI, Roboto, sans-serif; margin: 24px; background:#fafafa; color:#111; }
header { margin-bottom: 24px; }
h1 { font-size: 26px; margin: 0 0 8px; }
.section { border:1px solid #e5e7eb; border-radius:16px; padding:16px 20px; margin-bottom:18px; background:#fff; box-shadow:0 1px 2px rgba(15,23,42,0.08); }
h2 { font-size:20px; margin:0 0 12px; }
dt { font-weight:600; }
dd { margin:0 0 8px 0; }
.summary-grid { display:grid; gap:12px; grid-template-columns: repeat(auto-fit,minmax(180px,1fr)); }
.summary-card { display:block; padding:12px; border-radius:12px; border:1px solid #cbd5f5; text-decoration:none; color:inherit; position:relative; background:linear-gradient(180deg,#eef2ff,#fff); }
.summary-card[data-active="true"] { border-color:#4f46e5; box-shadow:0 0 0 2px rgba(79,70,229,0.4); }
.summary-card .badge { position:absolute; top:12px; right:12px; padding:2px 10px; border-radius:999px; background:#4f46e5; color:#fff; font-size:12px; }
.meta { color:#6b7280; font-size:12px; }
.table { width:100%; border-collapse:collapse; font-size:14px; }
.table th, .table td { border-bottom:1px solid #e5e7eb; padding:6px 8px; text-align:left; }
.table th { background:#f9fafb; }
.url { font-family: ui-monospace, SFMono-Regular, Menlo, Consolas, monospace; font-size:13px; }
.passed { color:#15803d; font-weight:600; }
.failed { color:#b91c1c; font-weight:600; }
.footer { text-align:center; font-size:12px; color:#6b7280; margin-top:24px; }
@media (prefers-color-scheme: dark) {
        body { background:#0f172a; color:#e2e8f0; }
        .section { background:#1e293b; border-color:#334155; box-shadow:none; }
        .summary-card { background:linear-gradient(180deg,#312e81,#1e293b); border-color:#4338ca; color:#e0e7ff; }
        .meta { color:#94a3b8; }
        .table th { background:#1e293b; }
}
</style>
<script>
document.addEventListener('DOMContentLoaded', function() {
  const cards = document.querySelectorAll('[data-filter]');
  const rows = document.querySelectorAll('tr[data-result]');
  function apply(filter) {
    cards.forEach(c => c.dataset.active = (c.dataset.filter === filter ? 'true' : 'false'));
    rows.forEach(row => {
      const show = filter === 'all' || row.dataset.result === filter || (filter === 'errors' && row.dataset.error === '1');
      row.style.display = show ? '' : 'none';
    });
  }
  cards.forEach(card => {
    card.addEventListener('click', function (ev) {
      ev.preventDefault();
      apply(card.dataset.filter || 'all');
    });
  });
  apply('all');
});
</script>
</head>
<body>
<header>
  <h1>{{.Title}}</h1>
  <p class="meta">Generated at {{formatTime .GeneratedAt}}</p>
</header>
<section id="summary" class="section">
  <h2>Summary</h2>
  <div class="summary-grid">
    <a class="summary-card" href="#results" data-filter="all"><strong>Total</strong><span class="badge">{{.Summary.Total}}</span></a>
    <a class="summary-card" href="#results" data-filter="passed"><strong>Passed</strong><span class="badge">{{.Summary.Passed}}</span></a>
    <a class="summary-card" href="#results" data-filter="failed"><strong>Failed</strong><span class="badge">{{.Summary.Failed}}</span></a>
    <a class="summary-card" href="#results" data-filter="errors"><strong>Errors</strong><span class="badge">{{.Summary.Errors}}</span></a>
  </div>
</section>
<section id="parameters" class="section">
  <h2>Parameters</h2>
  <dl>
  {{- range .OrderedParams }}
    <dt>{{.Key}}</dt>
    <dd><span class="url">{{.Value}}</span></dd>
  {{- end }}
  </dl>
</section>
<section id="results" class="section">
  <h2>Results</h2>
  <table class="table">
    <thead>
      <tr><th>#</th><th>Result</th><th>Status</th><th>URL</th><th>Expected</th><th>Actual</th><th>Error</th></tr>
    </thead>
    <tbody>
    {{range .Rows}}
      <tr data-result="{{.Result}}" data-error="{{if .Error}}1{{else}}0{{end}}">
        <td>{{.Row}}</td>
        <td class="{{.Result}}">{{.Result}}</td>
        <td>{{.StatusCode}} {{.Status}}</td>
        <td class="url">{{.URL}}</td>
        <td class="url">{{.ExpectedRedirect}}</td>
        <td class="url">{{.ActualRedirect}}</td>
        <td>{{.Error}}</td>
      </tr>
    {{end}}
    </tbody>
  </table>
</section>
<section id="errors" class="section">
  <h2>Errors</h2>
  {{if .Errors}}
    <ul>
    {{range .Errors}}
      <li>{{.}}</li>
    {{end}}
    </ul>
  {{else}}
    <p class="meta">No errors recorded.</p>
  {{end}}
</section>
<footer class="footer">
  URLTester report generated at {{formatTime .GeneratedAt}}
</footer>
</body>
</html>
`))

// RenderHTML renders the HTML report using the provided data.
func RenderHTML(w io.Writer, data PageData) error {
	if data.Params != nil {
		keys := make([]string, 0, len(data.Params))
		for k := range data.Params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		ordered := make([]Param, 0, len(keys))
		for _, k := range keys {
			ordered = append(ordered, Param{Key: k, Value: data.Params[k]})
		}
		data.OrderedParams = ordered
	}
	return htmlTemplate.Execute(w, data)
}
