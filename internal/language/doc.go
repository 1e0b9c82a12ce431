// Package language normalizes the language hints and names that flow between
// configuration, recognizers and the transcript: ISO 639-1/639-2 codes,
// BCP 47 tags and English names all map to a 2-letter code.
package language
