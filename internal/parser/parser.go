// Package parser turns the raw text of a UPI statement into header metadata
// and a normalized transaction table. It works as a small lexer: a date-time
// marker pattern tokenizes the document into candidate blocks, then a
// field-extraction pass applies the vendor's anchor patterns to each block.
package parser

import (
	"regexp"
	"strings"

	"expenselens/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Profile holds the anchor patterns for one statement vendor's layout.
// Capture group 1 of each pattern is the extracted value.
type Profile struct {
	NamePhone     *regexp.Regexp // groups 1 and 2: name, 10-digit phone
	Email         *regexp.Regexp
	Timeframe     *regexp.Regexp
	TotalPaid     *regexp.Regexp
	TotalReceived *regexp.Regexp
	Merchant      *regexp.Regexp
	Amount        *regexp.Regexp
	Tag           *regexp.Regexp
}

// PaytmProfile matches the Paytm UPI statement layout.
func PaytmProfile() Profile {
	return Profile{
		// Name and phone sit on the two lines after the "Contact Us" anchor.
		NamePhone:     regexp.MustCompile(`Contact Us\s*\n\s*([A-Z][A-Z\s]+?)\s*\n\s*(\d{10})`),
		Email:         regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`),
		Timeframe:     regexp.MustCompile(`UPI Statement for\s*\n\s*(.*)`),
		TotalPaid:     regexp.MustCompile(`Total Money Paid\s*-\s*Rs\.?([\d,]+(?:\.\d{1,2})?)`),
		TotalReceived: regexp.MustCompile(`Total Money Received\s*\+\s*Rs\.?([\d,]+(?:\.\d{1,2})?)`),
		Merchant:      regexp.MustCompile(`(?:Paid to|Money sent to)\s+([^\n]+)`),
		Amount:        regexp.MustCompile(`-\s*Rs\.?([\d,]+(?:\.\d{1,2})?)`),
		Tag:           regexp.MustCompile(`Tag:\s*#\s*([^\n]+)`),
	}
}

type Extractor struct {
	profile    Profile
	normalizer *Normalizer
	logger     *zap.Logger
}

// NewExtractor builds an extractor for the given vendor profile.
func NewExtractor(profile Profile, normalizer *Normalizer, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{
		profile:    profile,
		normalizer: normalizer,
		logger:     logger,
	}
}

// NewPaytmExtractor builds an extractor for Paytm UPI statements with the
// default category synonym table.
func NewPaytmExtractor(logger *zap.Logger) *Extractor {
	return NewExtractor(PaytmProfile(), NewNormalizer(), logger)
}

// Extract parses the statement. fullText is the concatenation of all pages in
// page order; firstPage is page one alone, where the header fields live.
// Every field is best-effort: a missed anchor yields a zero value or a dropped
// record, never an error. A candidate block becomes a TransactionRecord only
// when date, merchant, amount and category all matched.
func (e *Extractor) Extract(fullText, firstPage string) (models.StatementMetadata, []models.TransactionRecord) {
	meta := e.extractMetadata(firstPage)

	blocks := tokenize(fullText)
	records := make([]models.TransactionRecord, 0, len(blocks))

	var missMerchant, missAmount, missTag int
	for _, b := range blocks {
		merchant := firstGroup(e.profile.Merchant, b.body)
		if merchant == "" {
			missMerchant++
			continue
		}

		amount, ok := e.parseAmount(b.body)
		if !ok {
			missAmount++
			continue
		}

		tag := firstGroup(e.profile.Tag, b.body)
		if tag == "" {
			missTag++
			continue
		}

		records = append(records, models.TransactionRecord{
			Date:     b.date,
			Merchant: merchant,
			Amount:   amount,
			Category: e.normalizer.Normalize(tag),
		})
	}

	e.logger.Debug("statement extracted",
		zap.Int("blocks", len(blocks)),
		zap.Int("records", len(records)),
		zap.Int("miss_merchant", missMerchant),
		zap.Int("miss_amount", missAmount),
		zap.Int("miss_tag", missTag),
	)

	return meta, records
}

func (e *Extractor) extractMetadata(firstPage string) models.StatementMetadata {
	var meta models.StatementMetadata

	if m := e.profile.NamePhone.FindStringSubmatch(firstPage); m != nil {
		meta.Name = strings.TrimSpace(m[1])
		meta.Phone = strings.TrimSpace(m[2])
	}
	meta.Email = e.profile.Email.FindString(firstPage)
	meta.Timeframe = firstGroup(e.profile.Timeframe, firstPage)

	if amount, ok := parseNumeric(firstGroup(e.profile.TotalPaid, firstPage)); ok {
		v := amount.InexactFloat64()
		meta.TotalMoneyPaid = &v
	}
	if amount, ok := parseNumeric(firstGroup(e.profile.TotalReceived, firstPage)); ok {
		v := amount.InexactFloat64()
		meta.TotalMoneyReceived = &v
	}

	return meta
}

// parseAmount extracts the debit amount from a block. Zero and negative
// values do not make a valid record.
func (e *Extractor) parseAmount(body string) (decimal.Decimal, bool) {
	amount, ok := parseNumeric(firstGroup(e.profile.Amount, body))
	if !ok || !amount.IsPositive() {
		return decimal.Decimal{}, false
	}
	return amount, true
}

// parseNumeric parses a currency token, tolerating thousands separators.
func parseNumeric(token string) (decimal.Decimal, bool) {
	if token == "" {
		return decimal.Decimal{}, false
	}
	amount, err := decimal.NewFromString(strings.ReplaceAll(token, ",", ""))
	if err != nil {
		return decimal.Decimal{}, false
	}
	return amount, true
}

func firstGroup(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
