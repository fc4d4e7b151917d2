package atoms

import "golang.org/x/text/unicode/norm"

// UnknownCarrierIDListVersion marks a snapshot that has not seen a carrier id
// table yet.
const UnknownCarrierIDListVersion int32 = -1

// CarrierIDMismatch records SIM identifiers that did not resolve to a
// carrier id. The store keeps each distinct tuple once.
type CarrierIDMismatch struct {
	MccMnc string `json:"mcc_mnc" yaml:"mcc_mnc"`
	Gid1   string `json:"gid1" yaml:"gid1"`
	Spn    string `json:"spn" yaml:"spn"`
	Pnn    string `json:"pnn" yaml:"pnn"`
}

// CarrierIDMismatchKey is the dimension tuple of a CarrierIDMismatch.
type CarrierIDMismatchKey struct {
	MccMnc string
	Gid1   string
	Spn    string
	Pnn    string
}

func (c *CarrierIDMismatch) Key() CarrierIDMismatchKey {
	return CarrierIDMismatchKey{
		MccMnc: NormalizeText(c.MccMnc),
		Gid1:   NormalizeText(c.Gid1),
		Spn:    NormalizeText(c.Spn),
		Pnn:    NormalizeText(c.Pnn),
	}
}

// NormalizeText puts free-text dimension values in Unicode NFC so that
// canonically equivalent strings land in the same bucket.
func NormalizeText(s string) string {
	return norm.NFC.String(s)
}
