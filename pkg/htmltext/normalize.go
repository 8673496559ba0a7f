// Package htmltext converts rich-text HTML markup into the plain text the
// opposite tracker stores. The transformation is a fixed sequence of
// passes whose order is a compatibility contract: line and block breaks
// must be substituted before tags are stripped, because stripping first
// would destroy the cues they provide.
package htmltext

import (
	"regexp"
	"strings"
)

var (
	// Literal whitespace is insignificant in markup and becomes a space.
	rawWhitespace = regexp.MustCompile(`[\r\n\t]+`)

	// Containers whose content never renders.
	headBlock   = regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`)
	scriptBlock = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleBlock  = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)

	// Structural boundaries, substituted before tag stripping. The tag
	// names are anchored so prefix-sharing tags (<link>, <pre>, <param>,
	// <progress>, <track>) fall through to the strip pass instead.
	cellBoundary  = regexp.MustCompile(`(?i)</t[dh]\s*>`)
	lineBreak     = regexp.MustCompile(`(?i)<(?:br|li)(?:\s[^>]*)?/?>`)
	blockBoundary = regexp.MustCompile(`(?i)<(?:div|tr|p)(?:\s[^>]*)?/?>`)

	// Anything still tag-shaped after substitution.
	anyTag = regexp.MustCompile(`<[^>]*>`)

	// Named entities not in the fixed table are dropped.
	namedEntity = regexp.MustCompile(`&[a-zA-Z][a-zA-Z0-9]*;`)

	tripleNewline = regexp.MustCompile(`\n{3,}`)
	manyTabs      = regexp.MustCompile(`\t{5,}`)
)

// entities is the fixed decode table. Entities outside it are stripped,
// not decoded.
var entities = [...]struct{ name, text string }{
	{"&nbsp;", " "},
	{"&bull;", "•"},
	{"&laquo;", "«"},
	{"&raquo;", "»"},
	{"&trade;", "™"},
	{"&frasl;", "⁄"},
	{"&lt;", "<"},
	{"&gt;", ">"},
	{"&copy;", "©"},
	{"&reg;", "®"},
}

// Normalize converts HTML markup to plain text. It is a total function:
// any internal failure yields the input unchanged rather than an error.
func Normalize(markup string) (text string) {
	defer func() {
		if recover() != nil {
			text = markup
		}
	}()

	text = rawWhitespace.ReplaceAllString(markup, " ")

	text = headBlock.ReplaceAllString(text, "")
	text = scriptBlock.ReplaceAllString(text, "")
	text = styleBlock.ReplaceAllString(text, "")

	text = cellBoundary.ReplaceAllString(text, "\t")
	text = lineBreak.ReplaceAllString(text, "\n")
	text = blockBoundary.ReplaceAllString(text, "\n\n")

	text = anyTag.ReplaceAllString(text, "")

	for _, e := range entities {
		text = strings.ReplaceAll(text, e.name, e.text)
	}
	text = namedEntity.ReplaceAllString(text, "")

	// Collapse runaway breaks until stable; a single pass can leave new
	// runs behind when collapsed regions become adjacent.
	for {
		collapsed := tripleNewline.ReplaceAllString(text, "\n\n")
		collapsed = manyTabs.ReplaceAllString(collapsed, "\t\t\t\t")
		if collapsed == text {
			break
		}
		text = collapsed
	}

	return text
}
