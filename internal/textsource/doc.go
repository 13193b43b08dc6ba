// Package textsource turns a source document into plain narration input.
//
// Plain text and Markdown files are read directly, PDFs go through the
// pdftotext binary from poppler, and HTML files or http(s) URLs are reduced to
// their main article text with go-readability.
package textsource
