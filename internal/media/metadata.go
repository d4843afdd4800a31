package media

import (
	"bytes"
	"strings"

	"github.com/bep/imagemeta"

	"github.com/bokangsibolla/sola-images/internal/domain"
)

// stockAgencyKeywords are substrings that identify a stock-photo agency
// when found in any embedded rights field.
var stockAgencyKeywords = []string{
	"shutterstock",
	"gettyimages",
	"getty images",
	"istockphoto",
	"istock",
	"alamy",
	"depositphotos",
	"dreamstime",
	"123rf",
	"adobestock",
	"adobe stock",
	"bigstockphoto",
	"stocksy",
	"pond5",
	"masterfile",
	"superstock",
	"agefotostock",
	"age fotostock",
}

// ccLicenseMarkers identify Creative Commons license references in XMP
// rights fields.
var ccLicenseMarkers = []string{
	"creativecommons.org/licenses",
	"creativecommons.org/publicdomain",
	"creative commons",
}

// rightsFields are the embedded rights values pulled out of a download.
type rightsFields struct {
	copyright    string
	artist       string
	credit       string
	source       string
	usageTerms   string
	webStatement string
	rights       string
}

// wantedTags maps (metadata source, tag name) to true for every rights
// field the sniffer cares about.
var wantedTags = map[imagemeta.Source]map[string]bool{
	imagemeta.EXIF: {
		"Copyright": true,
		"Artist":    true,
	},
	imagemeta.IPTC: {
		"CopyrightNotice": true,
		"Credit":          true,
		"Source":          true,
	},
	imagemeta.XMP: {
		"WebStatement": true,
		"UsageTerms":   true,
		"Rights":       true,
	},
}

// SniffLicense inspects EXIF/IPTC/XMP rights metadata in raw image bytes
// and refines a domain-derived license hint: stock-agency fingerprints
// downgrade to likely_restricted, Creative Commons references upgrade to
// open_license_like. Unparseable or unmarked images return the hint
// unchanged. Never returns an error; metadata is advisory.
func SniffLicense(data []byte, hint domain.LicenseHint) domain.LicenseHint {
	return classifyRights(extractRights(data), hint)
}

// classifyRights applies the keyword rules to extracted rights fields.
func classifyRights(fields *rightsFields, hint domain.LicenseHint) domain.LicenseHint {
	if fields == nil {
		return hint
	}

	ownership := []string{fields.copyright, fields.artist, fields.credit, fields.source, fields.rights}
	for _, f := range ownership {
		lower := strings.ToLower(f)
		for _, kw := range stockAgencyKeywords {
			if f != "" && strings.Contains(lower, kw) {
				return domain.LicenseLikelyRestricted
			}
		}
	}

	licensing := []string{fields.usageTerms, fields.webStatement, fields.rights}
	for _, f := range licensing {
		lower := strings.ToLower(f)
		for _, marker := range ccLicenseMarkers {
			if f != "" && strings.Contains(lower, marker) {
				return domain.LicenseOpenLike
			}
		}
	}

	return hint
}

func extractRights(data []byte) *rightsFields {
	if len(data) == 0 {
		return nil
	}

	fields := &rightsFields{}
	found := false

	_, err := imagemeta.Decode(imagemeta.Options{
		R:       bytes.NewReader(data),
		Sources: imagemeta.EXIF | imagemeta.IPTC | imagemeta.XMP,
		ShouldHandleTag: func(ti imagemeta.TagInfo) bool {
			if tags, ok := wantedTags[ti.Source]; ok {
				return tags[ti.Tag]
			}
			return false
		},
		HandleTag: func(ti imagemeta.TagInfo) error {
			s := tagValueString(ti.Value)
			if s == "" {
				return nil
			}
			switch ti.Tag {
			case "Copyright", "CopyrightNotice":
				fields.copyright = s
			case "Artist":
				fields.artist = s
			case "Credit":
				fields.credit = s
			case "Source":
				fields.source = s
			case "UsageTerms":
				fields.usageTerms = s
			case "WebStatement":
				fields.webStatement = s
			case "Rights":
				fields.rights = s
			default:
				return nil
			}
			found = true
			return nil
		},
	})
	if err != nil || !found {
		return nil
	}
	return fields
}

// tagValueString extracts a string from a tag value. XMP values may be
// string slices from altList/seqList containers.
func tagValueString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []string:
		if len(val) > 0 {
			return val[0]
		}
	case []any:
		if len(val) > 0 {
			if s, ok := val[0].(string); ok {
				return s
			}
		}
	}
	return ""
}
