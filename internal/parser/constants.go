package parser

const (
	// AnnotationPrefix is the prefix used for all autoimpl annotations
	AnnotationPrefix = "autoimpl::"

	// Annotation parameter names
	ParamStrict    = "Strict"
	ParamContracts = "Contracts"
	ParamRequired  = "Required"
	ParamNullable  = "Nullable"
)
