package parser

import "regexp"

// block is one candidate transaction: the text between two consecutive
// date-time markers, paired with the date portion of the marker that opened
// it.
type block struct {
	date string // "<day> <Mon>", year not present in source text
	body string
}

// markerPattern delimits transactions: "<day> <3-letter-month> <HH:MM> <AM|PM>".
// Group 1 captures the date portion.
var markerPattern = regexp.MustCompile(`(\d{1,2}\s+[A-Za-z]{3})\s+\d{1,2}:\d{2}\s+[AP]M`)

// tokenize splits the full document text into candidate transaction blocks.
// Text before the first marker is header material and is not a block.
func tokenize(text string) []block {
	matches := markerPattern.FindAllStringSubmatchIndex(text, -1)
	blocks := make([]block, 0, len(matches))

	for i, m := range matches {
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		blocks = append(blocks, block{
			date: text[m[2]:m[3]],
			body: text[m[1]:end],
		})
	}

	return blocks
}
