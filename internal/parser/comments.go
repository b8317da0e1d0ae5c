package parser

import (
	"go/ast"
	"strings"

	"github.com/toyz/autoimpl/internal/annotations"
)

// commentLines returns the raw // lines of the given comment groups in order
func commentLines(groups ...*ast.CommentGroup) []string {
	var lines []string
	for _, group := range groups {
		if group == nil {
			continue
		}
		for _, comment := range group.List {
			lines = append(lines, comment.Text)
		}
	}
	return lines
}

// hasAnnotation is a cheap pre-check that does not validate parameters
func (c *collection) hasAnnotation(doc *ast.CommentGroup, kind annotations.AnnotationType) bool {
	if doc == nil {
		return false
	}
	for _, comment := range doc.List {
		if !annotations.IsAnnotation(comment.Text) {
			continue
		}
		if parsedKind, ok := annotationKind(comment.Text); ok && parsedKind == kind {
			return true
		}
	}
	return false
}

// annotationKind reads the kind word of an //autoimpl:: line
func annotationKind(text string) (annotations.AnnotationType, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(text), "//"+AnnotationPrefix)
	if !ok {
		return 0, false
	}
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return 0, false
	}
	kind, err := annotations.ParseAnnotationType(fields[0])
	return kind, err == nil
}

// annotationsOf parses every autoimpl annotation of the given comments. A
// malformed annotation is reported against subject and makes ok false.
func (c *collection) annotationsOf(subject string, groups ...*ast.CommentGroup) (parsed []*annotations.ParsedAnnotation, ok bool) {
	ok = true
	for _, group := range groups {
		if group == nil {
			continue
		}
		for _, comment := range group.List {
			if !annotations.IsAnnotation(comment.Text) {
				continue
			}
			loc := positionOf(c.fset, comment.Slash)
			annotation, err := c.p.annotations.ParseAnnotation(comment.Text, loc)
			if err != nil {
				c.reportAnnotationError(subject, loc, err)
				ok = false
				continue
			}
			parsed = append(parsed, annotation)
		}
	}
	return parsed, ok
}

// find returns the first annotation of kind
func find(parsed []*annotations.ParsedAnnotation, kind annotations.AnnotationType) *annotations.ParsedAnnotation {
	for _, annotation := range parsed {
		if annotation.Type == kind {
			return annotation
		}
	}
	return nil
}

// misplaced reports annotations that are not allowed on the element
func (c *collection) misplaced(subject, element string, parsed []*annotations.ParsedAnnotation, allowed ...annotations.AnnotationType) {
	for _, annotation := range parsed {
		valid := false
		for _, kind := range allowed {
			if annotation.Type == kind {
				valid = true
				break
			}
		}
		if !valid {
			c.warn(subject, annotation.Location, "//%s%s is not valid on %s; ignored",
				AnnotationPrefix, annotation.Type, element)
		}
	}
}
