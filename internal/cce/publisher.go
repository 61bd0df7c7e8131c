package cce

// Publisher holds information about the publisher(s) associated with a
// registration, and the time and circumstances of publication.
type Publisher struct {
	Dates        []*Date  `json:"dates,omitempty"`
	Places       []string `json:"places,omitempty"`
	Claimants    []string `json:"claimants,omitempty"`
	Nonclaimants []string `json:"nonclaimants,omitempty"`
}
