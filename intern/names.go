package intern

// elementNames pre-interns the common CDA element and attribute names so the
// parser resolves them with a single map lookup, bypassing the dynamic
// interner entirely.
var elementNames = map[string]string{}

func init() {
	for _, name := range []string{
		// document level
		"ClinicalDocument", "typeId", "templateId", "id", "code", "title",
		"effectiveTime", "confidentialityCode", "languageCode", "setId",
		"versionNumber", "copyTime",
		// participations
		"recordTarget", "patientRole", "patient", "author", "assignedAuthor",
		"assignedPerson", "custodian", "assignedCustodian",
		"representedCustodianOrganization", "dataEnterer", "informant",
		"informationRecipient", "legalAuthenticator", "authenticator",
		"participant", "performer", "authoringDevice",
		// names and demographics
		"name", "given", "family", "prefix", "suffix", "addr",
		"streetAddressLine", "city", "state", "postalCode", "country",
		"telecom", "administrativeGenderCode", "birthTime", "maritalStatusCode",
		// body
		"component", "structuredBody", "nonXMLBody", "section", "text",
		"entry", "entryRelationship",
		// clinical statements
		"observation", "procedure", "substanceAdministration", "supply",
		"encounter", "act", "organizer", "observationMedia", "regionOfInterest",
		// statement internals
		"statusCode", "value", "interpretationCode", "methodCode",
		"targetSiteCode", "doseQuantity", "rateQuantity", "routeCode",
		"consumable", "manufacturedProduct", "manufacturedMaterial",
		"specimen", "priorityCode", "reference", "originalText", "translation",
		"low", "high", "center", "width", "period", "time",
		// organizations
		"representedOrganization", "providerOrganization",
		"serviceProviderOrganization", "receivedOrganization",
	} {
		elementNames[name] = name
	}
}

// ElementName returns the pre-interned copy of a common CDA element name.
// The second return value is false when the name is not in the static table.
func ElementName(name string) (string, bool) {
	interned, ok := elementNames[name]
	return interned, ok
}

// ElementNameCount returns the size of the static table.
func ElementNameCount() int {
	return len(elementNames)
}
