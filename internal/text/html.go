package text

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// QuoteRef points at a quoted post by topic id and post number, the way
// quote markup in rendered forum HTML references it.
type QuoteRef struct {
	TopicID    int64
	PostNumber int64
}

// QuoteRefs extracts quote references from a post's rendered HTML.
// Quote blocks look like <aside class="quote" data-topic="12" data-post="3">.
// Malformed or attribute-less asides are skipped.
func QuoteRefs(cooked string) []QuoteRef {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(cooked))
	if err != nil {
		return nil
	}

	var refs []QuoteRef
	doc.Find("aside.quote").Each(func(_ int, s *goquery.Selection) {
		topicAttr, ok := s.Attr("data-topic")
		if !ok {
			return
		}
		postAttr, ok := s.Attr("data-post")
		if !ok {
			return
		}
		topicID, err := strconv.ParseInt(topicAttr, 10, 64)
		if err != nil {
			return
		}
		postNumber, err := strconv.ParseInt(postAttr, 10, 64)
		if err != nil {
			return
		}
		refs = append(refs, QuoteRef{TopicID: topicID, PostNumber: postNumber})
	})
	return refs
}

// PlainText strips markup from rendered HTML, leaving whitespace-normalized
// body text. Quote blocks are excluded so quoted content is not counted as
// the quoting author's own words.
func PlainText(cooked string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(cooked))
	if err != nil {
		return ""
	}
	doc.Find("aside.quote").Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// WordCount counts words in the post's own text.
func WordCount(cooked string) int64 {
	plain := PlainText(cooked)
	if plain == "" {
		return 0
	}
	return int64(len(strings.Fields(plain)))
}
