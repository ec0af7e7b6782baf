package configload

import (
	"fmt"

	"github.com/ohler55/ojg/oj"

	"github.com/agentic-research/pathform/api"
)

func loadJSON(data []byte) (api.Config, error) {
	doc, err := oj.Parse(data)
	if err != nil {
		return api.Config{}, fmt.Errorf("parsing json config: %w", err)
	}
	return fromGeneric(doc)
}
