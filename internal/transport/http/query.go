package http

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/wilbersoares/projeto-fatec/internal/dashboard"
	apperrors "github.com/wilbersoares/projeto-fatec/internal/errors"
	"github.com/wilbersoares/projeto-fatec/internal/filter"
	"github.com/wilbersoares/projeto-fatec/internal/validation"
	api "github.com/wilbersoares/projeto-fatec/pkg/contracts/api/v1"
	"github.com/wilbersoares/projeto-fatec/pkg/contracts/domain"
)

// parseViewQuery reads the stateless view parameters. A repeated parameter
// lists several values; a parameter given only with empty values selects
// nothing.
func parseViewQuery(values url.Values) (api.ViewQuery, error) {
	var q api.ViewQuery
	var err error

	if q.YearMin, err = optionalInt(values, "year_min"); err != nil {
		return q, err
	}
	if q.YearMax, err = optionalInt(values, "year_max"); err != nil {
		return q, err
	}
	if q.PeakYear, err = optionalInt(values, "peak_year"); err != nil {
		return q, err
	}
	if top, err := optionalInt(values, "region_top"); err != nil {
		return q, err
	} else if top != nil {
		q.RegionTop = *top
	}

	q.Platforms = list(values, "platform")
	q.Genres = list(values, "genre")
	q.CompareItems = list(values, "compare_item")
	q.ShareCategories = list(values, "share_category")

	q.TreemapDetail = values.Get("treemap_detail")
	q.Region = values.Get("region")
	q.RegionBy = values.Get("region_by")
	q.CompareBy = values.Get("compare_by")
	q.ShareBy = values.Get("share_by")
	q.Publisher = values.Get("publisher")

	return q, validation.Struct(q)
}

// viewRequest turns q into a filter state, starting from the default state
// of ctrl, and view options.
func viewRequest(ctrl *filter.Controller, q api.ViewQuery) (filter.State, dashboard.Options, error) {
	state := ctrl.Default()
	if q.YearMin != nil {
		state.Years.Min = *q.YearMin
	}
	if q.YearMax != nil {
		state.Years.Max = *q.YearMax
	}

	var err error
	if q.Platforms != nil {
		if state, err = ctrl.SetSelection(state, domain.DimensionPlatform, q.Platforms); err != nil {
			return state, dashboard.Options{}, err
		}
	}
	if q.Genres != nil {
		if state, err = ctrl.SetSelection(state, domain.DimensionGenre, q.Genres); err != nil {
			return state, dashboard.Options{}, err
		}
	}
	if q.PeakYear != nil {
		if state, err = ctrl.ApplyPeakYear(state, *q.PeakYear); err != nil {
			return state, dashboard.Options{}, err
		}
	}

	opts := dashboard.Options{
		TreemapDetail:   domain.Dimension(q.TreemapDetail),
		Region:          domain.Region(q.Region),
		RegionBy:        domain.Dimension(q.RegionBy),
		RegionTop:       q.RegionTop,
		CompareBy:       domain.Dimension(q.CompareBy),
		CompareItems:    q.CompareItems,
		ShareBy:         domain.Dimension(q.ShareBy),
		ShareCategories: q.ShareCategories,
		Publisher:       q.Publisher,
	}
	return state, opts, nil
}

// parsePagination reads offset and limit, defaulting limit to defaultLimit.
func parsePagination(values url.Values, defaultLimit, maxLimit int) (api.PaginationRequest, error) {
	req := api.PaginationRequest{Limit: defaultLimit}
	if v, err := optionalInt(values, "offset"); err != nil {
		return req, err
	} else if v != nil {
		req.Offset = *v
	}
	if v, err := optionalInt(values, "limit"); err != nil {
		return req, err
	} else if v != nil {
		req.Limit = *v
	}
	if err := validation.Struct(req); err != nil {
		return req, err
	}
	if req.Limit > maxLimit {
		return req, apperrors.NewAppValidationError(fmt.Sprintf("limit must be at most %d", maxLimit))
	}
	return req, nil
}

func optionalInt(values url.Values, key string) (*int, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperrors.NewAppValidationError(fmt.Sprintf("%s must be an integer", key)).
			WithContext("value", raw)
	}
	return &n, nil
}

// list returns nil when key is absent and a non-nil slice otherwise.
func list(values url.Values, key string) []string {
	raw, ok := values[key]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
