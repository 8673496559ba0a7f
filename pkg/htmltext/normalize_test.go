package htmltext_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/syncbridge/pkg/htmltext"
)

func TestNormalizeSpecimen(t *testing.T) {
	got := htmltext.Normalize("<p>Hello</p><br>World&nbsp;!")

	assert.Equal(t, "\n\nHello\nWorld !", got)
	assert.NotContains(t, got, "<")
	assert.NotContains(t, got, "&nbsp;")
}

func TestNormalizePassOrder(t *testing.T) {
	// If tags were stripped before break substitution, both lines would
	// run together.
	got := htmltext.Normalize("first<br>second")
	assert.Equal(t, "first\nsecond", got)

	got = htmltext.Normalize("<div>block</div>")
	assert.True(t, strings.HasPrefix(got, "\n\nblock"), "got %q", got)
}

func TestNormalizeTableCells(t *testing.T) {
	got := htmltext.Normalize("<table><tr><td>a</td><td>b</td></tr></table>")
	assert.Contains(t, got, "a\tb\t")
}

func TestNormalizeListItems(t *testing.T) {
	got := htmltext.Normalize("<ul><li>one</li><li>two</li></ul>")
	assert.Contains(t, got, "\none")
	assert.Contains(t, got, "\ntwo")
}

func TestNormalizeBreaksOnlyTheNamedTags(t *testing.T) {
	// Tags that merely share a prefix with a break tag are stripped like
	// any other markup, not converted to breaks.
	tests := []struct{ in, want string }{
		{`a<link rel="stylesheet">b`, "ab"},
		{"a<pre>b</pre>c", "abc"},
		{`a<param name="x">b`, "ab"},
		{"a<progress>b</progress>c", "abc"},
		{"a<track>b", "ab"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, htmltext.Normalize(tt.in), "input %q", tt.in)
	}

	// Attribute-bearing and self-closing forms of the named tags still
	// convert.
	assert.Equal(t, "a\nb", htmltext.Normalize("a<br/>b"))
	assert.Equal(t, "a\nb", htmltext.Normalize("a<br />b"))
	assert.Equal(t, "a\nb", htmltext.Normalize(`a<li class="x">b`))
	assert.Equal(t, "a\n\nb", htmltext.Normalize(`a<p style="margin:0">b`))
}

func TestNormalizeStripsInvisibleBlocks(t *testing.T) {
	in := "<head><title>ignored</title></head>" +
		"<script>alert('x')</script>" +
		"<style>p { color: red }</style>" +
		"visible"
	assert.Equal(t, "visible", htmltext.Normalize(in))
}

func TestNormalizeRawWhitespaceBecomesSpaces(t *testing.T) {
	got := htmltext.Normalize("one\r\ntwo\tthree")
	assert.Equal(t, "one two three", got)
}

func TestNormalizeEntityTable(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a&nbsp;b", "a b"},
		{"&bull; point", "• point"},
		{"&laquo;q&raquo;", "«q»"},
		{"x&trade;", "x™"},
		{"1&frasl;2", "1⁄2"},
		{"&lt;tag&gt;", "<tag>"},
		{"&copy; &reg;", "© ®"},
		// Unlisted named entities are stripped, not decoded.
		{"a&mdash;b", "ab"},
		{"a&eacute;b", "ab"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, htmltext.Normalize(tt.in), "input %q", tt.in)
	}
}

func TestNormalizeEntityDecodeAfterTagStrip(t *testing.T) {
	// &lt;b&gt; decodes to a literal <b> that must survive, since tag
	// stripping already ran.
	got := htmltext.Normalize("use &lt;b&gt; for bold")
	assert.Equal(t, "use <b> for bold", got)
}

func TestNormalizeCollapsesRuns(t *testing.T) {
	got := htmltext.Normalize("<p><p><p>deep</p>")
	assert.NotContains(t, got, "\n\n\n")

	got = htmltext.Normalize("<td></td><td></td><td></td><td></td><td></td><td></td>x")
	assert.NotContains(t, got, "\t\t\t\t\t")
	assert.Contains(t, got, "\t\t\t\t")
}

func TestNormalizeIdempotentOnPlainOutput(t *testing.T) {
	// Once whitespace is collapsed and tags are stripped, a second pass
	// is a no-op.
	inputs := []string{
		"<b>bold</b> and <i>italic</i>&nbsp;text",
		"plain text already",
		"spans <span>do not</span> recur",
	}
	for _, in := range inputs {
		once := htmltext.Normalize(in)
		assert.Equal(t, once, htmltext.Normalize(once), "input %q", in)
	}
}

func TestNormalizeEmptyInput(t *testing.T) {
	assert.Equal(t, "", htmltext.Normalize(""))
}
