package corpus

import "unicode/utf8"

// Document is one immutable material snippet in the corpus.
type Document struct {
	Ordinal     int     // position in the corpus, used as the stable tie-break id
	SourceID    string  // stable "file#chunk" identifier
	Source      string  // originating file name
	Breadcrumb  string  // source > heading path, for display
	Text        string  // material body
	Weight      float64 // source trust/importance in [0,1]
	Credibility float64 // source credibility in [0,1]
	Length      int     // rune count of Text
}

// Corpus is an ordered, read-only collection of documents. It is built
// once at load time and safe for concurrent readers without locking.
type Corpus struct {
	docs []Document
}

// New builds a corpus from documents. Ordinals and lengths are assigned
// here; weight and credibility are clamped into [0,1].
func New(docs []Document) *Corpus {
	out := make([]Document, len(docs))
	for i, d := range docs {
		d.Ordinal = i
		d.Length = utf8.RuneCountInString(d.Text)
		d.Weight = clamp01(d.Weight)
		d.Credibility = clamp01(d.Credibility)
		out[i] = d
	}
	return &Corpus{docs: out}
}

// Len returns the number of documents.
func (c *Corpus) Len() int {
	return len(c.docs)
}

// Doc returns the document at ordinal i.
func (c *Corpus) Doc(i int) Document {
	return c.docs[i]
}

// Docs returns the underlying document slice. Callers must not modify it.
func (c *Corpus) Docs() []Document {
	return c.docs
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
