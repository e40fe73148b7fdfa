// Package notify delivers link update notifications from the scrapper to
// the bot, over HTTP or Kafka depending on configuration.
package notify

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/linktrack/linktrack/internal/source"
)

// RenderDescription formats activity info as "key: value" lines, one field
// per line in order. The preview field is HTML from upstream post bodies, so
// its markup is stripped first.
func RenderDescription(info source.Info) string {
	var b strings.Builder
	for _, f := range info {
		value := f.Value
		if f.Key == "preview" {
			value = stripHTML(value)
		}
		b.WriteString(f.Key)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteString("\n")
	}
	return b.String()
}

// stripHTML returns the text content of an HTML fragment.
func stripHTML(fragment string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(fragment))
	var b strings.Builder
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.Write(tokenizer.Text())
		}
	}
}
