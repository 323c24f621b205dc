package dossier

// Namespace is the base IRI prefix for dossier ontology terms.
const Namespace = "http://ontologies.vub.be/oecd#"

// ResourceBase is the default base IRI for dossier instances.
const ResourceBase = "http://wise10.vub.ac.be"

// Class IRIs.
const (
	// ClassReport is the root of all report block types.
	ClassReport = Namespace + "Report"

	// ClassOpinion is the class of the dossier root block.
	ClassOpinion = Namespace + "Opinion"
)

// Property IRIs.
const (
	// PropAttribute attaches a simple attribute node to a block type.
	PropAttribute = Namespace + "attribute"

	// PropAttributeGroup attaches a nested block type to a block type.
	PropAttributeGroup = Namespace + "attributeGroup"

	// PropOrder is the ordering key of an attribute node.
	PropOrder = Namespace + "order"

	// PropPredicate names the data property an attribute node edits.
	PropPredicate = Namespace + "predicate"

	// PropContains links a block instance to a nested block instance.
	PropContains = Namespace + "contains"

	// PropOptionGroup is the marker property of dropdown option groups.
	PropOptionGroup = Namespace + "option_group"
)

// Standard ontology IRI constants.
const (
	RDFNamespace  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFSNamespace = "http://www.w3.org/2000/01/rdf-schema#"
	XSDNamespace  = "http://www.w3.org/2001/XMLSchema#"

	RDFType        = RDFNamespace + "type"
	RDFSSubClassOf = RDFSNamespace + "subClassOf"
	RDFSLabel      = RDFSNamespace + "label"
	RDFSRange      = RDFSNamespace + "range"
	RDFSDomain     = RDFSNamespace + "domain"
	XSDString      = XSDNamespace + "string"
	XSDBoolean     = XSDNamespace + "boolean"
	XSDDateTime    = XSDNamespace + "dateTime"
	XSDDate        = XSDNamespace + "date"
	XSDInteger     = XSDNamespace + "integer"
	XSDInt         = XSDNamespace + "int"
	XSDLong        = XSDNamespace + "long"
	XSDPositiveInt = XSDNamespace + "positiveInteger"
	XSDDouble      = XSDNamespace + "double"
	XSDFloat       = XSDNamespace + "float"
	XSDDecimal     = XSDNamespace + "decimal"
	XSDAnyURI      = XSDNamespace + "anyURI"
	DcTitle        = "http://purl.org/dc/terms/title"
	DcIdentifier   = "http://purl.org/dc/terms/identifier"
	DcModified     = "http://purl.org/dc/terms/modified"
)

// GraphPath is the path segment between the resource base and a dossier id.
const GraphPath = "/resource/dossier/"
