package model

// Page stores the extracted text of one document page. The normalized
// copy (NFC, lowercased, collapsed whitespace) backs search elsewhere.
type Page struct {
	ID                string
	DocumentID        string
	PageNumber        int
	Content           string
	ContentNormalized string
}
