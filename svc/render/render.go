package render

import (
	"crypto/sha256"
	"encoding/hex"
	"html/template"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"github.com/russross/blackfriday/v2"

	"inkwell/metrics"
	"inkwell/pkg/domain"
)

// Renderer converts markdown source to HTML and passes plain text through
// unchanged. Markdown output is cached by content hash since documents are
// read far more often than they change.
type Renderer struct {
	cache *lru.Cache[string, template.HTML]
	mu    sync.Mutex
}

func New(cacheSize int) (*Renderer, error) {
	if cacheSize <= 0 {
		return nil, errors.New("render cache size must be positive")
	}
	c, err := lru.New[string, template.HTML](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Renderer{cache: c}, nil
}

// Markdown renders commonmark-style markdown to HTML.
func (r *Renderer) Markdown(content []byte) template.HTML {
	key := contentKey(content)
	r.mu.Lock()
	if html, ok := r.cache.Get(key); ok {
		r.mu.Unlock()
		metrics.RenderCacheHits.Inc()
		return html
	}
	r.mu.Unlock()
	metrics.RenderCacheMisses.Inc()

	html := template.HTML(blackfriday.Run(content))
	r.mu.Lock()
	r.cache.Add(key, html)
	r.mu.Unlock()
	return html
}

// Kind dispatch: plain text is returned verbatim by handlers, markdown goes
// through Markdown. Unknown kinds never reach here, validation rejects them.
func (r *Renderer) RendersHTML(kind domain.Kind) bool {
	return kind == domain.KindMarkdown
}

func contentKey(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
