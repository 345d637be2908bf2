// Package retriever scores query variants against the immutable
// material corpus.
//
// Two signal sources contribute:
//
//   - Lexical: BM25 over an in-memory inverted index. Always available,
//     deterministic for a fixed corpus and variant. Documents with zero
//     term overlap are excluded from the lexical candidate set.
//
//   - Vector: cosine similarity over precomputed TF-IDF document
//     vectors. Optional augmentation behind an explicit capability flag.
//
// # Capability Degradation
//
// Vector scoring is negotiated once at construction and may be lost at
// runtime. Any failure (a corpus with no usable vocabulary, an error or
// panic during a similarity computation) permanently disables the
// capability for the process lifetime and logs a single advisory. The
// current query always completes on lexical scores alone, and the result
// shape is unchanged; only the contributing score set shrinks.
//
//	r := retriever.New(corp, retriever.Options{EnableVector: true}, log)
//	hits := r.Score(ctx, variant)  // never fails
//	r.VectorCapable()              // false forever after the first failure
//
// # Tokenization
//
// Queries and documents are tokenized into Han-script runs plus ASCII
// alphanumeric runs; Han runs additionally emit character bigrams so
// multi-character compounds match partially. The same tokenizer feeds
// both the BM25 index and the TF-IDF vectorizer.
package retriever
