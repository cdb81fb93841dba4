package content

var tagKinds = map[string]Kind{
	"p":          KindParagraph,
	"h1":         KindHeading,
	"h2":         KindHeading,
	"h3":         KindHeading,
	"h4":         KindHeading,
	"h5":         KindHeading,
	"h6":         KindHeading,
	"div":        KindContainer,
	"section":    KindContainer,
	"article":    KindContainer,
	"aside":      KindContainer,
	"header":     KindContainer,
	"footer":     KindContainer,
	"main":       KindContainer,
	"nav":        KindContainer,
	"figure":     KindContainer,
	"blockquote": KindContainer,
	"body":       KindContainer,
	"address":    KindContainer,
	"pre":        KindPreformatted,
	"ul":         KindUnorderedList,
	"ol":         KindOrderedList,
	"li":         KindListItem,
	"table":      KindTable,
	"thead":      KindTableHead,
	"tbody":      KindTableBody,
	"tfoot":      KindTableFoot,
	"tr":         KindTableRow,
	"td":         KindTableCell,
	"th":         KindTableCell,
	"dl":         KindDefinitionList,
	"dt":         KindDefinitionTerm,
	"dd":         KindDefinitionDescription,
	"span":       KindInline,
	"a":          KindInline,
	"strong":     KindInline,
	"b":          KindInline,
	"em":         KindInline,
	"i":          KindInline,
	"u":          KindInline,
	"s":          KindInline,
	"code":       KindInline,
	"small":      KindInline,
	"sup":        KindInline,
	"sub":        KindInline,
	"br":         KindInline,
	"mark":       KindInline,
	"abbr":       KindInline,
	"time":       KindInline,
	"label":      KindInline,
	"cite":       KindInline,
	"q":          KindInline,
	"img":        KindOpaque,
	"svg":        KindOpaque,
	"video":      KindOpaque,
	"canvas":     KindOpaque,
	"iframe":     KindOpaque,
	"object":     KindOpaque,
	"embed":      KindOpaque,
	"hr":         KindOpaque,
	"input":      KindOpaque,
	"picture":    KindOpaque,
}

// KindForTag classifies an element name. Unknown elements are treated as
// generic containers.
func KindForTag(tag string) Kind {
	if k, ok := tagKinds[tag]; ok {
		return k
	}
	return KindContainer
}

// IsInlineLevel reports whether nodes of this kind flow inside a line box
func (k Kind) IsInlineLevel() bool {
	return k == KindText || k == KindInline
}

// IsList reports whether k is an ordered or unordered list
func (k Kind) IsList() bool {
	return k == KindUnorderedList || k == KindOrderedList
}
