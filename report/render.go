package report

import (
	"bytes"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Renderer turns a report value into a self-contained document. The
// document embeds the canonical JSON state so the next run can reload it.
type Renderer interface {
	// Render produces the complete document.
	Render(r *Report) (string, error)

	// Ext returns the file extension for this format, including the dot.
	Ext() string
}

// MarkdownRenderer renders the report as a Markdown document with the
// state embedded in a trailing HTML comment.
type MarkdownRenderer struct{}

// NewMarkdownRenderer creates a Markdown renderer.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{}
}

// Ext returns ".md".
func (m *MarkdownRenderer) Ext() string { return ".md" }

// Render produces the Markdown document.
func (m *MarkdownRenderer) Render(r *Report) (string, error) {
	state, err := EncodeState(r)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(renderMainBody(r))
	b.WriteString(renderArchiveBody(r))
	fmt.Fprintf(&b, "\n---\n_Generated by Context Cartographer · %s_\n", timestamp(r))
	b.WriteString("\n" + stateCommentOpen + state + stateCommentClose + "\n")
	return b.String(), nil
}

// HTMLRenderer renders the report as a single self-contained styled HTML
// document: all CSS inline, no external resources. Section text is
// converted from Markdown with goldmark and sanitized with bluemonday
// before being embedded, since the narrative content originates from an
// external engine.
type HTMLRenderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// NewHTMLRenderer creates an HTML renderer.
func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy: bluemonday.UGCPolicy(),
	}
}

// Ext returns ".html".
func (h *HTMLRenderer) Ext() string { return ".html" }

// Render produces the HTML document.
func (h *HTMLRenderer) Render(r *Report) (string, error) {
	state, err := EncodeState(r)
	if err != nil {
		return "", err
	}

	mainHTML, err := h.fragment(renderMainBody(r))
	if err != nil {
		return "", err
	}

	archive := ""
	if len(r.Archive) > 0 {
		archiveHTML, err := h.fragment(renderArchiveBody(r))
		if err != nil {
			return "", err
		}
		archive = fmt.Sprintf(
			"<details class=\"archive\">\n<summary>Archived History (%d steps)</summary>\n%s</details>\n",
			len(r.Archive), archiveHTML)
	}

	title := "Context Map"
	if r.Project != "" {
		title += " — " + html.EscapeString(r.Project)
	}

	var b strings.Builder
	fmt.Fprintf(&b, htmlShellHead, title)
	b.WriteString("<main>\n")
	b.WriteString(mainHTML)
	b.WriteString(archive)
	fmt.Fprintf(&b, "<footer>Generated by Context Cartographer · %s</footer>\n", timestamp(r))
	b.WriteString("</main>\n")
	b.WriteString(stateScriptOpen + state + stateScriptClose + "\n")
	b.WriteString("</body>\n</html>\n")
	return b.String(), nil
}

// fragment converts Markdown to a sanitized HTML fragment.
func (h *HTMLRenderer) fragment(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := h.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	return string(h.policy.SanitizeBytes(buf.Bytes())), nil
}

// RenderWithin renders the report, re-compacting with a tightened step
// threshold (and, as a last resort, trimming the oldest archive entries)
// until the document fits under the configured size ceiling. The returned
// document is best-effort even when ErrCeilingExceeded is reported.
func RenderWithin(r *Report, renderer Renderer, config *CompactionConfig) (string, error) {
	if config == nil {
		config = DefaultCompactionConfig()
	} else {
		config.ApplyDefaults()
	}
	cfg := *config

	for {
		Compact(r, &cfg)
		doc, err := renderer.Render(r)
		if err != nil {
			return "", err
		}
		if len(doc) <= cfg.SizeCeiling {
			return doc, nil
		}
		if cfg.MaxDetailedSteps > minDetailedSteps {
			cfg.MaxDetailedSteps /= 2
			if cfg.MaxDetailedSteps < minDetailedSteps {
				cfg.MaxDetailedSteps = minDetailedSteps
			}
			continue
		}
		if len(r.Archive) > 0 {
			drop := len(r.Archive) / 2
			if drop == 0 {
				drop = 1
			}
			r.Archive = append([]ArchiveEntry(nil), r.Archive[drop:]...)
			continue
		}
		return doc, fmt.Errorf("%w: %d bytes after maximum compaction", ErrCeilingExceeded, len(doc))
	}
}

// renderMainBody builds the Markdown for the narrative, anchor, timeline,
// and open-threads sections, in the fixed section order of the artifact.
func renderMainBody(r *Report) string {
	var b strings.Builder

	if r.Project != "" {
		fmt.Fprintf(&b, "# 🗺️ Context Map — %s\n\n", r.Project)
	} else {
		b.WriteString("# 🗺️ Context Map\n\n")
	}

	b.WriteString("## 📖 Session Narrative\n\n")
	b.WriteString(orPlaceholder(r.Narrative, "_No narrative yet._"))
	b.WriteString("\n\n")

	b.WriteString("## 🧠 Where We Left Off\n\n")
	b.WriteString(orPlaceholder(r.Anchor, "_No context anchor yet._"))
	b.WriteString("\n\n")

	b.WriteString("## 🧭 Evolution Timeline\n\n")
	if len(r.Sessions) == 0 {
		b.WriteString("_No sessions recorded._\n\n")
	}
	stepNo := len(r.Archive)
	for i, session := range r.Sessions {
		label := fmt.Sprintf("### Session %d — %s", i+1, session.Timestamp.Format("2006-01-02 15:04"))
		if i == len(r.Sessions)-1 {
			label += " (latest)"
		}
		b.WriteString(label + "\n\n")
		if session.Narrative != "" {
			b.WriteString(session.Narrative + "\n\n")
		}
		for _, step := range session.Steps {
			stepNo++
			fmt.Fprintf(&b, "**%d. %s** — `%s`\n\n", stepNo, step.Title, step.Status)
			if step.Intent != "" {
				fmt.Fprintf(&b, "- **Intent:** %s\n", step.Intent)
			}
			if step.Expected != "" {
				fmt.Fprintf(&b, "- **Expected:** %s\n", step.Expected)
			}
			if step.Result != "" {
				fmt.Fprintf(&b, "- **Result:** %s\n", step.Result)
			}
			if len(step.Artifacts) > 0 {
				fmt.Fprintf(&b, "- **Artifacts:** `%s`\n", strings.Join(step.Artifacts, "`, `"))
			}
			b.WriteString("\n")
			if step.Transition != "" {
				fmt.Fprintf(&b, "> ↓ _%s_\n\n", step.Transition)
			}
		}
	}

	b.WriteString("## 🚧 Open Threads\n\n")
	if len(r.OpenThreads) == 0 {
		b.WriteString("No open threads.\n\n")
	} else {
		for _, thread := range r.OpenThreads {
			fmt.Fprintf(&b, "- %s\n", thread)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// renderArchiveBody builds the Markdown for the archived-history section.
func renderArchiveBody(r *Report) string {
	if len(r.Archive) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("## 🗃️ Archived History\n\n")
	for i, entry := range r.Archive {
		fmt.Fprintf(&b, "- %d. %s — `%s`", i+1, entry.Title, entry.Status)
		if entry.Result != "" {
			fmt.Fprintf(&b, " — %s", entry.Result)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}

func orPlaceholder(text, placeholder string) string {
	if strings.TrimSpace(text) == "" {
		return placeholder
	}
	return text
}

func timestamp(r *Report) string {
	t := r.GeneratedAt
	if t.IsZero() {
		t = time.Now()
	}
	return t.Format(time.RFC3339)
}

// htmlShellHead is the document head with the inline stylesheet. The
// palette follows the dark, glassmorphism-leaning look of the report the
// tool replaces: deep dark background, soft surfaces, status accents.
const htmlShellHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s</title>
<style>
:root {
  --bg: #0a0a0f;
  --surface: rgba(255, 255, 255, 0.04);
  --border: rgba(255, 255, 255, 0.08);
  --text: #f0f0f5;
  --text-dim: #8b8b9e;
  --accent: #667eea;
  --ok: #34d399;
  --warn: #fbbf24;
  --err: #f87171;
}
body {
  margin: 0;
  background: var(--bg);
  color: var(--text);
  font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif;
  font-size: 15px;
  line-height: 1.7;
}
main { max-width: 960px; margin: 0 auto; padding: 48px 24px; }
h1 {
  background: linear-gradient(135deg, #667eea 0%%, #764ba2 100%%);
  -webkit-background-clip: text;
  background-clip: text;
  color: transparent;
}
h2 {
  margin-top: 48px;
  padding-bottom: 8px;
  border-bottom: 1px solid var(--border);
}
h3 { color: var(--text-dim); margin-top: 32px; }
blockquote {
  margin: 12px 0 12px 16px;
  padding: 4px 16px;
  border-left: 2px solid var(--accent);
  background: rgba(102, 126, 234, 0.08);
  color: var(--text-dim);
  font-style: italic;
}
code {
  background: var(--surface);
  border: 1px solid var(--border);
  border-radius: 4px;
  padding: 1px 6px;
  font-size: 13px;
}
ul { padding-left: 24px; }
details.archive {
  margin-top: 48px;
  background: var(--surface);
  border: 1px solid var(--border);
  border-radius: 12px;
  padding: 16px 24px;
}
details.archive summary { cursor: pointer; color: var(--text-dim); }
footer {
  margin-top: 64px;
  color: var(--text-dim);
  font-size: 13px;
  border-top: 1px solid var(--border);
  padding-top: 16px;
}
a { color: var(--accent); }
</style>
</head>
<body>
`
