// Package render turns agent replies, which are Markdown, into styled
// terminal text.
//
// Replies are parsed with goldmark (GitHub Flavored Markdown) and the AST is
// written back out as plain lines: headings and emphasis become ANSI styles,
// lists get bullets or numbers, quotes get a bar, code blocks are indented,
// and tables are aligned into columns. With color disabled the output is
// readable plain text.
package render
