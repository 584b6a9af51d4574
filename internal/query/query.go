// Package query implements the directory's filter/sort/paginate engine.
//
// The engine is a pure function over a snapshot of the developer
// collection: identical inputs always produce identical output, nothing
// is mutated, and there is no clock dependency: "newest" sorts on the
// CreatedAt already embedded in each record. Keeping it free of HTTP,
// storage, and logging concerns means it can be tested exhaustively
// with plain slices.
package query

import (
	"sort"
	"strings"

	"github.com/sakif/dev-directory/internal/apperror"
	"github.com/sakif/dev-directory/internal/model"
)

// Sort keys accepted by Params.Sort. An empty Sort means SortNewest.
const (
	SortNewest         = "newest"
	SortExperienceAsc  = "experience_asc"
	SortExperienceDesc = "experience_desc"
)

// DefaultPageSize matches the directory UI's grid of 9 cards per page.
const DefaultPageSize = 9

// Params are the query-time inputs. None of them are persisted.
//
// Search, Role, and Tech are all matched case-insensitively; an empty
// string disables that filter. Page is 1-indexed and PageSize must be
// positive; both are the caller's responsibility to default before
// calling Run (handlers default them from the HTTP query string).
type Params struct {
	Search   string // substring over Developer.Name
	Role     string // exact match over Developer.Role
	Tech     string // substring over any TechStack element
	Sort     string // one of the Sort* constants, or empty
	Page     int
	PageSize int
}

// Result is one page of the filtered, sorted collection.
// Data holds at most PageSize records; Page echoes the request.
type Result struct {
	Data       []model.Developer `json:"data"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	TotalPages int               `json:"totalPages"`
}

// Run applies the filter pipeline, sorts, and slices out one page.
//
// Pipeline order is fixed: role, tech, search, sort, paginate. The
// filters are independent predicates, so their order doesn't change
// the result set, but keeping a fixed order keeps the pre-sort record
// order (and therefore tie-breaking) deterministic.
//
// An out-of-range page yields an empty Data slice, not an error; an
// empty post-filter collection yields Total = 0 and TotalPages = 0.
// Invalid Page or PageSize fails with InvalidParameter.
func Run(developers []model.Developer, p Params) (*Result, error) {
	if p.Page < 1 {
		return nil, apperror.InvalidParameter("page", "page must be 1 or greater")
	}
	if p.PageSize < 1 {
		return nil, apperror.InvalidParameter("pageSize", "pageSize must be a positive integer")
	}

	sortKey := p.Sort
	if sortKey == "" {
		sortKey = SortNewest
	}
	switch sortKey {
	case SortNewest, SortExperienceAsc, SortExperienceDesc:
	default:
		return nil, apperror.InvalidParameter("sort", "unknown sort key: "+p.Sort)
	}

	filtered := filter(developers, p)

	// SliceStable keeps the relative order of equal keys, so records
	// sharing an experience value (or timestamp) stay in their
	// pre-sort order.
	switch sortKey {
	case SortExperienceAsc:
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].Experience < filtered[j].Experience
		})
	case SortExperienceDesc:
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].Experience > filtered[j].Experience
		})
	case SortNewest:
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
		})
	}

	total := len(filtered)
	totalPages := (total + p.PageSize - 1) / p.PageSize

	start := (p.Page - 1) * p.PageSize
	end := start + p.PageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return &Result{
		Data:       filtered[start:end],
		Total:      total,
		Page:       p.Page,
		TotalPages: totalPages,
	}, nil
}

// filter returns a new slice containing the records that pass every
// requested predicate. The input slice is never modified; records are
// copied shallowly, which is safe because Run never mutates them.
func filter(developers []model.Developer, p Params) []model.Developer {
	role := strings.ToLower(strings.TrimSpace(p.Role))
	tech := strings.ToLower(strings.TrimSpace(p.Tech))
	search := strings.ToLower(strings.TrimSpace(p.Search))

	out := make([]model.Developer, 0, len(developers))
	for _, d := range developers {
		if role != "" && strings.ToLower(string(d.Role)) != role {
			continue
		}
		if tech != "" && !stackContains(d.TechStack, tech) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(d.Name), search) {
			continue
		}
		out = append(out, d)
	}
	return out
}

func stackContains(stack []string, needle string) bool {
	for _, t := range stack {
		if strings.Contains(strings.ToLower(t), needle) {
			return true
		}
	}
	return false
}
