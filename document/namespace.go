package document

// Namespace pairs an optional prefix with a URI.
type Namespace struct {
	Prefix string
	URI    string
}

// Well-known namespace URIs used by CDA documents.
const (
	// NamespaceHL7V3 is the HL7 v3 namespace used by ClinicalDocument.
	NamespaceHL7V3 = "urn:hl7-org:v3"
	// NamespaceXSI is the XML Schema instance namespace.
	NamespaceXSI = "http://www.w3.org/2001/XMLSchema-instance"
	// NamespaceSDTC is the HL7 structured documents extension namespace.
	NamespaceSDTC = "urn:hl7-org:sdtc"
	// NamespaceXML is the built-in XML namespace bound to the xml prefix.
	NamespaceXML = "http://www.w3.org/XML/1998/namespace"
	// NamespaceXLink is the XLink namespace.
	NamespaceXLink = "http://www.w3.org/1999/xlink"
)

// WellKnownNamespaces lists the predeclared namespaces with their
// conventional prefixes.
var WellKnownNamespaces = []Namespace{
	{Prefix: "", URI: NamespaceHL7V3},
	{Prefix: "xsi", URI: NamespaceXSI},
	{Prefix: "sdtc", URI: NamespaceSDTC},
	{Prefix: "xml", URI: NamespaceXML},
	{Prefix: "xlink", URI: NamespaceXLink},
}

// WellKnownPrefix returns the conventional prefix for a well-known namespace
// URI. The second return value is false when the URI is not predeclared.
func WellKnownPrefix(uri string) (string, bool) {
	for _, ns := range WellKnownNamespaces {
		if ns.URI == uri {
			return ns.Prefix, true
		}
	}
	return "", false
}
