package validator

import (
	"fmt"
	"strings"

	"github.com/gocda/engine/document"
)

// requiredDocumentChildren is the fixed required child set of ClinicalDocument.
var requiredDocumentChildren = []string{
	"typeId", "id", "code", "effectiveTime", "confidentialityCode",
	"recordTarget", "author", "custodian", "component", "title",
}

// singleOccurrenceChildren lists children that may appear at most once under
// the named parent.
var singleOccurrenceChildren = map[string][]string{
	"ClinicalDocument": {
		"typeId", "id", "code", "title", "effectiveTime",
		"confidentialityCode", "languageCode", "setId", "versionNumber",
		"custodian", "component",
	},
	"section": {"id", "code", "title", "text"},
}

// clinicalStatementNames are the recognized entry children.
var clinicalStatementNames = map[string]bool{
	"observation":              true,
	"procedure":                true,
	"substanceAdministration":  true,
	"supply":                   true,
	"encounter":                true,
	"act":                      true,
	"organizer":                true,
	"observationMedia":         true,
	"regionOfInterest":         true,
}

// timestampNames are the element names checked by the timestamps phase.
var timestampNames = map[string]bool{
	"effectiveTime": true,
	"birthTime":     true,
	"time":          true,
}

// validTimestampLengths are the accepted partial-precision digit-string
// lengths: YYYY, YYYYMM, YYYYMMDD, then hour, minute and second precision.
var validTimestampLengths = map[int]bool{4: true, 6: true, 8: true, 10: true, 12: true, 14: true}

// --- structure phase (CDA schema) ---

func (r *run) structurePhase(root *document.Element) {
	r.walk(root, func(el *document.Element, xpath string) {
		switch el.Name {
		case "ClinicalDocument":
			r.checkDocumentStructure(el, xpath)
		case "observation":
			r.checkObservation(el, xpath)
		}
	})
}

func (r *run) checkDocumentStructure(el *document.Element, xpath string) {
	for _, required := range requiredDocumentChildren {
		if !r.checkRule() {
			return
		}
		if el.FirstChild(required) == nil {
			r.addError("CDA-MISSING-REQUIRED",
				fmt.Sprintf("ClinicalDocument is missing required element %q", required),
				xpath)
		}
	}

	for _, attr := range []string{"classCode", "moodCode"} {
		if !r.checkRule() {
			return
		}
		if !el.HasAttribute(attr) {
			r.addError("CDA-MISSING-ATTR-"+strings.ToUpper(attr),
				fmt.Sprintf("ClinicalDocument is missing required attribute %q", attr),
				xpath)
		}
	}
}

func (r *run) checkObservation(el *document.Element, xpath string) {
	for _, attr := range []string{"classCode", "moodCode"} {
		if !r.checkRule() {
			return
		}
		if !el.HasAttribute(attr) {
			r.addError("OBS-MISSING-"+strings.ToUpper(attr),
				fmt.Sprintf("observation is missing required attribute %q", attr),
				xpath)
		}
	}

	if r.checkRule() && el.FirstChild("code") == nil {
		r.addError("OBS-NO-CODE", "observation has no code element", xpath)
	}
	if r.checkRule() && el.FirstChild("statusCode") == nil {
		r.addError("OBS-NO-STATUS", "observation has no statusCode element", xpath)
	}
}

// --- identifiers phase ---

func (r *run) identifiersPhase(root *document.Element) {
	r.walk(root, func(el *document.Element, xpath string) {
		switch el.Name {
		case "id":
			if !r.checkRule() {
				return
			}
			if !el.HasAttribute("root") && !el.HasAttribute("nullFlavor") {
				r.addError("ID-MISSING-ROOT", "id element has no root attribute", xpath)
			}
		case "templateId":
			if !r.checkRule() {
				return
			}
			oid, hasRoot := el.Attribute("root")
			switch {
			case !hasRoot && !el.HasAttribute("nullFlavor"):
				r.addError("TEMPLATE-NO-ROOT", "templateId element has no root attribute", xpath)
			case hasRoot && !isOID(oid):
				if r.checkRule() {
					r.addWarning("TEMPLATE-INVALID-OID",
						fmt.Sprintf("templateId root %q is not a valid OID", oid), xpath)
				}
			}
		}
	})
}

// isOID reports whether s is a dotted-numeric object identifier with at
// least two arcs.
func isOID(s string) bool {
	if s == "" {
		return false
	}
	arcs := strings.Split(s, ".")
	if len(arcs) < 2 {
		return false
	}
	for _, arc := range arcs {
		if arc == "" {
			return false
		}
		for _, c := range arc {
			if c < '0' || c > '9' {
				return false
			}
		}
	}
	return true
}

// --- codes phase ---

func (r *run) codesPhase(root *document.Element) {
	r.walk(root, func(el *document.Element, xpath string) {
		if el.Name != "code" {
			return
		}
		if !r.checkRule() {
			return
		}

		code, hasCode := el.Attribute("code")
		switch {
		case !hasCode && !el.HasAttribute("nullFlavor"):
			r.addError("CODE-MISSING", "code element has neither code nor nullFlavor", xpath)
		case hasCode && !el.HasAttribute("codeSystem"):
			if r.checkRule() {
				r.addWarning("CODE-NO-SYSTEM",
					fmt.Sprintf("code %q has no codeSystem", code), xpath)
			}
		}
	})
}

// --- timestamps phase ---

func (r *run) timestampsPhase(root *document.Element) {
	r.walk(root, func(el *document.Element, xpath string) {
		if !timestampNames[el.Name] {
			return
		}
		if !r.checkRule() {
			return
		}

		value, hasValue := el.Attribute("value")
		switch {
		case !hasValue && !el.HasAttribute("nullFlavor") && len(el.Children) == 0:
			// Interval timestamps carry low/high children instead of a
			// value attribute and are exempt from this rule.
			r.addError("TIME-MISSING-VALUE",
				fmt.Sprintf("%s has neither value nor nullFlavor", el.Name), xpath)
		case hasValue && !isValidTimestamp(value):
			if r.checkRule() {
				r.addError("TIME-INVALID-FORMAT",
					fmt.Sprintf("timestamp value %q is not a valid HL7 timestamp", value), xpath)
			}
		}
	})
}

// isValidTimestamp accepts the HL7 partial-precision digit strings:
// 4, 6, 8, 10, 12 or 14 digits.
func isValidTimestamp(v string) bool {
	if !validTimestampLengths[len(v)] {
		return false
	}
	for _, c := range v {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// --- narrative phase ---

func (r *run) narrativePhase(root *document.Element) {
	r.walk(root, func(el *document.Element, xpath string) {
		switch el.Name {
		case "section":
			if !r.checkRule() {
				return
			}
			if el.FirstChild("title") == nil && el.FirstChild("code") == nil {
				r.addWarning("SECTION-NO-TITLE-CODE",
					"section has neither title nor code", xpath)
			}
		case "entry":
			if !r.checkRule() {
				return
			}
			if !hasClinicalStatement(el) {
				r.addError("ENTRY-NO-STATEMENT",
					"entry contains no recognized clinical statement", xpath)
			}
		}
	})
}

func hasClinicalStatement(entry *document.Element) bool {
	for _, child := range entry.Children {
		if clinicalStatementNames[child.Name] {
			return true
		}
	}
	return false
}

// --- cardinality phase ---

func (r *run) cardinalityPhase(root *document.Element) {
	r.walk(root, func(el *document.Element, xpath string) {
		singles, ok := singleOccurrenceChildren[el.Name]
		if !ok {
			return
		}
		for _, name := range singles {
			if !r.checkRule() {
				return
			}
			if n := len(el.ChildrenByName(name)); n > 1 {
				r.addError("CARD-DUPLICATE",
					fmt.Sprintf("%s allows at most one %s, found %d", el.Name, name, n),
					xpath+"/"+name)
			}
		}
	})
}
