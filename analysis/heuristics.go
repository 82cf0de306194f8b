package analysis

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Document types reported by Analyze.
const (
	TypeUnknown    = "Unknown"
	TypeTaxInvoice = "Tax Invoice"
	TypeReceipt    = "Receipt"
)

// Summary holds the amounts found in the text. Missing amounts are nil.
type Summary struct {
	Subtotal *float64 `json:"subtotal"`
	VAT      *float64 `json:"vat"`
	Total    *float64 `json:"total"`
}

// Result is the structured reading of one block of text.
type Result struct {
	DocumentType  string   `json:"document_type"`
	InvoiceNumber *string  `json:"invoice_number"`
	Date          *string  `json:"date"`
	Summary       Summary  `json:"summary"`
	LineItems     []string `json:"detected_line_items"`
}

var (
	taxInvoicePattern = regexp.MustCompile(`חשבונית מס|(?i:tax invoice)`)
	receiptPattern    = regexp.MustCompile(`קבלה|(?i:\breceipt\b)`)
	datePattern       = regexp.MustCompile(`\d{2}[./]\d{2}[./]\d{2,4}`)
	invoiceNoPattern  = regexp.MustCompile(`(?i)(?:חשבונית מס|חשבונית|מספר|invoice no\.?)\s*:?\s*([א-תA-Za-z0-9-]+)`)
	subtotalPattern   = regexp.MustCompile(`(?i)sub-?total|סכום ביניים|סה"כ לפני מע"מ`)
	totalPattern      = regexp.MustCompile(`(?i)סה"כ לתשלום|סך הכל|סה"כ|total`)
	vatPattern        = regexp.MustCompile(`(?i)מע"מ|\bVAT\b|מ\.ע\.מ`)
	amountPattern     = regexp.MustCompile(`(\d{1,3}(,\d{3})*|\d+)(\.\d{2})?`)
	numberPattern     = regexp.MustCompile(`\d+\.?\d*`)
)

// minLineItemLength is the rune count a line must exceed to be taken as a
// line item.
const minLineItemLength = 15

// Analyze reads invoice fields out of text. The first match wins for every
// field; a line naming a subtotal never counts as the total or VAT line.
func Analyze(text string) Result {
	text = strings.ReplaceAll(text, "  ", " ")
	res := Result{DocumentType: TypeUnknown, LineItems: []string{}}

	switch {
	case taxInvoicePattern.MatchString(text):
		res.DocumentType = TypeTaxInvoice
	case receiptPattern.MatchString(text):
		res.DocumentType = TypeReceipt
	}

	if m := datePattern.FindString(text); m != "" {
		res.Date = &m
	}
	if m := invoiceNoPattern.FindStringSubmatch(text); m != nil {
		res.InvoiceNumber = &m[1]
	}

	lines := strings.Split(text, "\n")
	for _, line := range lines {
		if subtotalPattern.MatchString(line) {
			setAmount(&res.Summary.Subtotal, line)
			continue
		}
		if totalPattern.MatchString(line) {
			setAmount(&res.Summary.Total, line)
		}
		if vatPattern.MatchString(line) {
			setAmount(&res.Summary.VAT, line)
		}
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if utf8.RuneCountInString(line) > minLineItemLength && len(numberPattern.FindAllString(line, -1)) >= 2 {
			res.LineItems = append(res.LineItems, line)
		}
	}
	return res
}

// setAmount stores the first amount on line in dst unless dst is already
// set.
func setAmount(dst **float64, line string) {
	if *dst != nil {
		return
	}
	m := amountPattern.FindString(line)
	if m == "" {
		return
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
	if err != nil {
		return
	}
	*dst = &v
}
