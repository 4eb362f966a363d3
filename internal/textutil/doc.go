// Package textutil provides token fingerprints and cosine similarity for
// matching free text, such as a reel's music context, against catalog
// metadata.
//
// Tokenization lowercases text, splits on non-alphanumeric characters and
// drops tokens shorter than 3 characters.
package textutil
