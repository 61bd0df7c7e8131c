package cce

// Renewal is one copyright-renewal filing, immutable after parsing except
// for membership in the match engine's used set.
type Renewal struct {
	ID          string   `json:"uuid"`
	Regnums     []string `json:"regnum,omitempty"`
	RegDates    []string `json:"reg_date,omitempty"`
	RenewalID   string   `json:"renewal_id,omitempty"`
	RenewalDate string   `json:"renewal_date,omitempty"`
	Author      string   `json:"author,omitempty"`
	Title       string   `json:"title,omitempty"`
	NewMatter   string   `json:"new_matter,omitempty"`
	Claimants   []string `json:"claimants,omitempty"`
	Notes       string   `json:"notes,omitempty"`
	FullText    string   `json:"full_text,omitempty"`

	// Cross-references to other filings, recorded as raw identifiers.
	SeeAlsoRenewal      []string `json:"see_also_renewal,omitempty"`
	SeeAlsoRegistration []string `json:"see_also_registration,omitempty"`
}

// RenewalKey returns the renewal's normalized (title, author) lookup key.
func (r *Renewal) RenewalKey() RenewalKey {
	return KeyFor(r.Title, r.Author)
}
