package model

// DetectedLibrary is one observation from the external page-analysis feed.
// Only Name is required; the feed is untrusted and entries without a name
// are skipped by the engine.
type DetectedLibrary struct {
	Name     string `json:"name"`
	Version  string `json:"version,omitempty"`
	Detector string `json:"detector,omitempty"`
}

// RankedAlternative pairs one alternative's size record with the bytes
// saved relative to the detected original.
type RankedAlternative struct {
	Record  PackageSizeRecord `json:"record"`
	Savings int64             `json:"savings"`
}

// Pairing is the engine's output unit: the detected oversized library's
// record plus its alternatives, every one strictly smaller than the
// original and sorted ascending by gzip size.
type Pairing struct {
	Original     PackageSizeRecord   `json:"original"`
	Alternatives []RankedAlternative `json:"alternatives"`
}
