// Package media assigns a visual source to each scene of a reel.
//
// Sources are consumed in strict priority order: media the user supplied,
// then media scraped from the business website, then AI generation. Each tier
// keeps its own cursor and no candidate is handed out twice. The generation
// tier is unbounded, so every scene always resolves.
package media
