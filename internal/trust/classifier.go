// Package trust scores image hosting domains for reliability and likely
// usage rights. Classification is pure and stable: the same URL always
// yields the same result, which keeps cached strategy results valid.
package trust

import (
	"net/url"
	"strings"

	"github.com/bokangsibolla/sola-images/internal/domain"
)

// Classification is the trust verdict for one hosting domain.
type Classification struct {
	Trust float64
	Hint  domain.LicenseHint
}

// knownDomains maps a domain (matched exactly or as a suffix) to its
// classification. Open-license repositories rank highest, government
// tourism boards next, editorial press in the middle, and stock-photo
// marketplaces at the bottom where the rejection filter discards them.
var knownDomains = map[string]Classification{
	// Open-license repositories.
	"wikimedia.org":         {Trust: 0.9, Hint: domain.LicenseOpenLike},
	"wikipedia.org":         {Trust: 0.9, Hint: domain.LicenseOpenLike},
	"commons.wikimedia.org": {Trust: 0.95, Hint: domain.LicenseOpenLike},
	"unsplash.com":          {Trust: 0.85, Hint: domain.LicenseOpenLike},
	"pexels.com":            {Trust: 0.85, Hint: domain.LicenseOpenLike},
	"pixabay.com":           {Trust: 0.8, Hint: domain.LicenseOpenLike},

	// Government tourism boards.
	"visitthailand.com":      {Trust: 0.7, Hint: domain.LicenseGovTourism},
	"japan.travel":           {Trust: 0.7, Hint: domain.LicenseGovTourism},
	"southafrica.net":        {Trust: 0.7, Hint: domain.LicenseGovTourism},
	"visitportugal.com":      {Trust: 0.7, Hint: domain.LicenseGovTourism},
	"indonesia.travel":       {Trust: 0.7, Hint: domain.LicenseGovTourism},
	"vietnam.travel":         {Trust: 0.7, Hint: domain.LicenseGovTourism},
	"tourismcambodia.com":    {Trust: 0.7, Hint: domain.LicenseGovTourism},
	"tourismmalaysia.gov.my": {Trust: 0.7, Hint: domain.LicenseGovTourism},
	"visitsingapore.com":     {Trust: 0.7, Hint: domain.LicenseGovTourism},

	// Editorial press: good pictures, restricted rights.
	"lonelyplanet.com":       {Trust: 0.6, Hint: domain.LicenseLikelyRestricted},
	"nationalgeographic.com": {Trust: 0.6, Hint: domain.LicenseLikelyRestricted},
	"cntraveler.com":         {Trust: 0.5, Hint: domain.LicenseLikelyRestricted},
	"afar.com":               {Trust: 0.5, Hint: domain.LicenseLikelyRestricted},

	// Stock marketplaces. Trust 0.1 puts them under the rejection floor.
	"shutterstock.com":   {Trust: 0.1, Hint: domain.LicenseLikelyRestricted},
	"gettyimages.com":    {Trust: 0.1, Hint: domain.LicenseLikelyRestricted},
	"istockphoto.com":    {Trust: 0.1, Hint: domain.LicenseLikelyRestricted},
	"alamy.com":          {Trust: 0.1, Hint: domain.LicenseLikelyRestricted},
	"dreamstime.com":     {Trust: 0.1, Hint: domain.LicenseLikelyRestricted},
	"123rf.com":          {Trust: 0.1, Hint: domain.LicenseLikelyRestricted},
	"depositphotos.com":  {Trust: 0.1, Hint: domain.LicenseLikelyRestricted},
	"adobe.com":          {Trust: 0.1, Hint: domain.LicenseLikelyRestricted},
}

// govTLDs are country-government suffixes that imply tourism-board material.
var govTLDs = []string{".gov", ".gov.za", ".go.jp", ".gov.my"}

// Classify analyzes a URL's hostname and returns its trust score and
// license hint. Malformed URLs get a low-trust unknown classification
// rather than an error.
func Classify(rawURL string) Classification {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return Classification{Trust: 0.2, Hint: domain.LicenseUnknown}
	}
	host := strings.ToLower(u.Hostname())

	// Prefer the longest matching domain so commons.wikimedia.org wins
	// over wikimedia.org regardless of map iteration order.
	var (
		best    Classification
		bestLen = -1
	)
	for d, c := range knownDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			if len(d) > bestLen {
				best, bestLen = c, len(d)
			}
		}
	}
	if bestLen >= 0 {
		return best
	}

	for _, tld := range govTLDs {
		if strings.HasSuffix(host, tld) {
			return Classification{Trust: 0.75, Hint: domain.LicenseGovTourism}
		}
	}

	if strings.Contains(host, "tourism") || strings.Contains(host, "visit") || strings.Contains(host, "travel") {
		return Classification{Trust: 0.6, Hint: domain.LicenseGovTourism}
	}

	return Classification{Trust: 0.4, Hint: domain.LicenseUnknown}
}
