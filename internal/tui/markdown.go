package tui

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/alecthomas/chroma"
	"github.com/alecthomas/chroma/formatters"
	"github.com/alecthomas/chroma/lexers"
	"github.com/alecthomas/chroma/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	codeBlockRegex = regexp.MustCompile(`(?s)<pre><code(?: class="language-([a-zA-Z0-9]+)")?>(.*?)</code></pre>`)
	headingRegex   = regexp.MustCompile(`<h[1-6][^>]*>(.*?)</h[1-6]>`)
	strongRegex    = regexp.MustCompile(`<strong>(.*?)</strong>`)
	emRegex        = regexp.MustCompile(`<em>(.*?)</em>`)
	linkRegex      = regexp.MustCompile(`<a href="([^"]*)">(.*?)</a>`)
	listRegex      = regexp.MustCompile(`(?s)<[uo]l>(.*?)</[uo]l>`)
	liRegex        = regexp.MustCompile(`<li>(.*?)</li>`)
	inlineCodeRe   = regexp.MustCompile(`<code>([^<]+)</code>`)
	htmlTagRegex   = regexp.MustCompile(`<[^>]+>`)
	multiNewline   = regexp.MustCompile(`\n{3,}`)
)

// MarkdownRenderer turns assistant replies into styled terminal text:
// markdown is rendered to HTML by goldmark, then the handful of tags
// the backend actually produces are mapped onto lipgloss styles, with
// chroma highlighting fenced code.
type MarkdownRenderer struct {
	md        goldmark.Markdown
	formatter chroma.Formatter
	theme     Theme
}

func NewMarkdownRenderer(theme Theme) *MarkdownRenderer {
	return &MarkdownRenderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
		formatter: formatters.Get("terminal256"),
		theme:     theme,
	}
}

func (r *MarkdownRenderer) Render(content string, width int) string {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(content), &buf); err != nil {
		return content
	}
	return r.formatForTerminal(buf.String(), width)
}

func (r *MarkdownRenderer) formatForTerminal(htmlContent string, width int) string {
	result := htmlContent

	// Code blocks first, shelved so later passes can't touch them.
	var codeBlocks []string
	result = codeBlockRegex.ReplaceAllStringFunc(result, func(m string) string {
		parts := codeBlockRegex.FindStringSubmatch(m)
		if len(parts) < 3 {
			return m
		}
		code := decodeHTMLEntities(parts[2])
		codeWidth := width - 6
		if codeWidth < 20 {
			codeWidth = 20
		}
		styled := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(r.theme.Border).
			Padding(0, 1).
			Width(codeWidth).
			Render(r.highlight(code, parts[1]))
		codeBlocks = append(codeBlocks, styled)
		return fmt.Sprintf("\n{{CODE_%d}}\n", len(codeBlocks)-1)
	})

	result = inlineCodeRe.ReplaceAllStringFunc(result, func(m string) string {
		parts := inlineCodeRe.FindStringSubmatch(m)
		if len(parts) < 2 {
			return m
		}
		return lipgloss.NewStyle().Foreground(r.theme.Accent).Render(decodeHTMLEntities(parts[1]))
	})

	result = headingRegex.ReplaceAllStringFunc(result, func(m string) string {
		parts := headingRegex.FindStringSubmatch(m)
		if len(parts) < 2 {
			return m
		}
		return lipgloss.NewStyle().Bold(true).Foreground(r.theme.Accent).Render(parts[1]) + "\n"
	})

	result = strongRegex.ReplaceAllString(result, "\x1b[1m$1\x1b[22m")
	result = emRegex.ReplaceAllString(result, "\x1b[3m$1\x1b[23m")

	result = linkRegex.ReplaceAllStringFunc(result, func(m string) string {
		parts := linkRegex.FindStringSubmatch(m)
		if len(parts) < 3 {
			return m
		}
		return lipgloss.NewStyle().Underline(true).Foreground(r.theme.Accent).
			Render(fmt.Sprintf("%s (%s)", parts[2], parts[1]))
	})

	result = listRegex.ReplaceAllStringFunc(result, func(m string) string {
		parts := listRegex.FindStringSubmatch(m)
		if len(parts) < 2 {
			return m
		}
		items := liRegex.FindAllStringSubmatch(parts[1], -1)
		var list strings.Builder
		for _, item := range items {
			if len(item) >= 2 {
				list.WriteString("  • ")
				list.WriteString(htmlTagRegex.ReplaceAllString(item[1], ""))
				list.WriteString("\n")
			}
		}
		return list.String()
	})

	result = strings.NewReplacer(
		"<p>", "", "</p>", "\n",
		"<br>", "\n", "<br/>", "\n", "<br />", "\n",
	).Replace(result)

	for i, block := range codeBlocks {
		result = strings.ReplaceAll(result, fmt.Sprintf("{{CODE_%d}}", i), block)
	}

	result = htmlTagRegex.ReplaceAllString(result, "")
	result = decodeHTMLEntities(result)
	result = multiNewline.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

func (r *MarkdownRenderer) highlight(code, lang string) string {
	var lexer chroma.Lexer
	if lang != "" {
		lexer = lexers.Get(lang)
	}
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	iterator, err := chroma.Coalesce(lexer).Tokenise(nil, code)
	if err != nil {
		return code
	}
	var buf bytes.Buffer
	if err := r.formatter.Format(&buf, styles.Get("friendly"), iterator); err != nil {
		return code
	}
	return strings.TrimRight(buf.String(), "\n")
}

func decodeHTMLEntities(s string) string {
	return strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&#x27;", "'",
		"&#x60;", "`",
		"&nbsp;", " ",
	).Replace(s)
}
