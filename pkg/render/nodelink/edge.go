package nodelink

import (
	"strconv"

	"github.com/matzehuels/jirascope/pkg/issue"
)

// EncodeLink renders l as an unstyled DOT edge statement.
func EncodeLink(l issue.Link) string {
	return strconv.Quote(l.SrcKey) + "->" + strconv.Quote(l.DstKey) + ";"
}
