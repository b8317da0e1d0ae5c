package annotations

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/toyz/autoimpl/internal/errors"
)

// annotationNode is the root of an //autoimpl:: comment
type annotationNode struct {
	Namespace string        `parser:"Comment @Ident Separator"`
	Kind      string        `parser:"@Ident"`
	Options   []*optionNode `parser:"@@*"`
}

// optionNode is a -Name or -Name=value[,value...] option
type optionNode struct {
	Pos    lexer.Position
	Name   string   `parser:"Dash @Ident"`
	Values []string `parser:"( Equals @( String | Ident | Number ) ( Comma @( String | Ident | Number ) )* )?"`
}

var annotationLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//`},
	{Name: "Separator", Pattern: `::`},
	{Name: "String", Pattern: `"(\\"|[^"])*"`},
	{Name: "Number", Pattern: `[0-9]+(\.[0-9]+)?`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_./-]*`},
	{Name: "Dash", Pattern: `-`},
	{Name: "Equals", Pattern: `=`},
	{Name: "Comma", Pattern: `,`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// Parser parses //autoimpl:: annotations and validates them against the
// registered schemas
type Parser struct {
	grammar  *participle.Parser[annotationNode]
	registry AnnotationRegistry
}

// NewParser creates a parser backed by the given schema registry
func NewParser(registry AnnotationRegistry) *Parser {
	grammar := participle.MustBuild[annotationNode](
		participle.Lexer(annotationLexer),
		participle.Elide("Whitespace"),
		participle.UseLookahead(2),
	)

	return &Parser{
		grammar:  grammar,
		registry: registry,
	}
}

// IsAnnotation reports whether a comment line belongs to the autoimpl namespace
func IsAnnotation(comment string) bool {
	return strings.HasPrefix(strings.TrimSpace(comment), "//"+Namespace+":")
}

// ParseAnnotation parses a single annotation comment line
func (p *Parser) ParseAnnotation(comment string, location SourceLocation) (*ParsedAnnotation, error) {
	raw := strings.TrimSpace(comment)

	node, err := p.grammar.ParseString(location.File, raw)
	if err != nil {
		return nil, p.syntaxError(err, raw, location)
	}

	if node.Namespace != Namespace {
		return nil, errors.NewSyntaxErrorWithToken("annotation is not in the autoimpl namespace", node.Namespace, 0).
			WithLocation(location)
	}

	annotationType, err := ParseAnnotationType(node.Kind)
	if err != nil {
		return nil, errors.NewSyntaxErrorWithToken(err.Error(), node.Kind, 0).
			WithLocation(location).
			WithSuggestion("use one of " + Spellings(p.registry))
	}

	parsed := &ParsedAnnotation{
		Type:       annotationType,
		Parameters: make(map[string]interface{}),
		Location:   location,
		Raw:        raw,
	}

	schema, err := p.registry.GetSchema(annotationType)
	if err != nil {
		return nil, errors.Wrap(errors.RegistrationErrorCode, "cannot validate //"+Namespace+"::"+node.Kind, err).
			WithLocation(location)
	}

	for _, option := range node.Options {
		if err := p.applyOption(parsed, schema, option); err != nil {
			return nil, err
		}
	}

	if err := p.validateAgainstSchema(parsed, schema); err != nil {
		return nil, err
	}

	return parsed, nil
}

// applyOption converts one option according to the schema
func (p *Parser) applyOption(parsed *ParsedAnnotation, schema AnnotationSchema, option *optionNode) error {
	spec, exists := schema.Parameters[option.Name]
	if !exists {
		return errors.NewValidationError(option.Name, "one of "+knownParameters(schema), "unknown parameter").
			WithLocation(parsed.Location).
			WithContext("annotation_type", parsed.Type.String())
	}

	if parsed.HasParameter(option.Name) {
		return errors.NewValidationError(option.Name, "a single occurrence", "a repeated parameter").
			WithLocation(parsed.Location)
	}

	value, err := convertValues(spec, option.Values)
	if err != nil {
		return errors.NewValidationError(option.Name, spec.Type.String(), err.Error()).
			WithLocation(parsed.Location).
			WithValue(strings.Join(option.Values, ","))
	}

	if spec.Validator != nil {
		if err := spec.Validator(value); err != nil {
			return errors.NewValidationError(option.Name, spec.Description, err.Error()).
				WithLocation(parsed.Location)
		}
	}

	parsed.Parameters[option.Name] = value
	return nil
}

// validateAgainstSchema checks required parameters and custom validators
func (p *Parser) validateAgainstSchema(parsed *ParsedAnnotation, schema AnnotationSchema) error {
	for paramName, paramSpec := range schema.Parameters {
		if paramSpec.Required && !parsed.HasParameter(paramName) {
			return errors.NewValidationError(paramName, "a value", "nothing").
				WithLocation(parsed.Location).
				WithSuggestion(fmt.Sprintf("add -%s to the annotation", paramName))
		}
	}

	for _, validator := range schema.Validators {
		if err := validator(parsed); err != nil {
			return errors.NewValidationError(parsed.Type.String(), schema.Description, err.Error()).
				WithLocation(parsed.Location).
				WithSuggestion(strings.Join(schema.Examples, "\n"))
		}
	}

	return nil
}

// syntaxError converts a participle error into a SyntaxError
func (p *Parser) syntaxError(err error, raw string, location SourceLocation) error {
	var perr participle.Error
	if errors.As(err, &perr) {
		pos := perr.Position()
		token := ""
		if pos.Offset >= 0 && pos.Offset < len(raw) {
			if fields := strings.Fields(raw[pos.Offset:]); len(fields) > 0 {
				token = fields[0]
			}
		}
		loc := location
		if loc.Column > 0 {
			loc.Column += pos.Column - 1
		}
		return errors.NewSyntaxErrorWithToken(perr.Message(), token, pos.Offset).
			WithLocation(loc).
			WithSuggestion("annotations look like //autoimpl::<kind> -Option=value")
	}
	return errors.WrapParseError("annotation", err)
}

func knownParameters(schema AnnotationSchema) string {
	if len(schema.Parameters) == 0 {
		return "no parameters"
	}
	names := make([]string, 0, len(schema.Parameters))
	for name := range schema.Parameters {
		names = append(names, "-"+name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
