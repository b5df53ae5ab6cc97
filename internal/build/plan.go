package build

import (
	"sort"

	"git.home.luguber.info/inful/inkpress/internal/content"
	"git.home.luguber.info/inful/inkpress/internal/site"
)

// planned pairs a document with its output-relative path.
type planned struct {
	doc     content.Document
	outPath string
}

// planOutputs maps every non-draft document to its output path and verifies
// the mapping is a bijection. Two documents resolving to the same path is a
// fatal configuration error reported with both offending source paths.
//
// Planning happens before the parallel render phase, so no two workers ever
// target the same output path.
func planOutputs(docs []content.Document) ([]planned, error) {
	bySlug := make(map[string]string, len(docs)) // output path -> first source
	plans := make([]planned, 0, len(docs))

	for _, d := range docs {
		out := site.OutputPath(d.Slug)
		if first, clash := bySlug[out]; clash {
			return nil, NewError(CategoryCollision, SeverityFatal,
				"two documents resolve to the same output path "+out).
				WithPaths(first, d.SourcePath)
		}
		bySlug[out] = d.SourcePath
		plans = append(plans, planned{doc: d, outPath: out})
	}

	// Deterministic order for rendering and logging.
	sort.Slice(plans, func(i, j int) bool { return plans[i].outPath < plans[j].outPath })
	return plans, nil
}
