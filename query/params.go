package query

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-flavor-inventory/internal/apperr"
	"github.com/goliatone/go-flavor-inventory/model"
)

// Pagination defaults used when a request omits page or limit.
const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// Query string keys understood by ParseParams.
const (
	KeyPage           = "page"
	KeyLimit          = "limit"
	KeyStoreNames     = "storeNames"
	KeyFlavors        = "flavors"
	KeyMinQuantity    = "minQuantity"
	KeyMaxQuantity    = "maxQuantity"
	KeyMinDate        = "minDate"
	KeyMaxDate        = "maxDate"
	KeyIsSeasonFlavor = "isSeasonFlavor"
)

// Page is a 1-based page request.
type Page struct {
	Page  int
	Limit int
}

// Validate requires page and limit to be greater than 0.
func (p Page) Validate() error {
	err := validation.ValidateStruct(&p,
		validation.Field(&p.Page, validation.Required.Error("must be greater than 0"), validation.Min(1).Error("must be greater than 0")),
		validation.Field(&p.Limit, validation.Required.Error("must be greater than 0"), validation.Min(1).Error("must be greater than 0")),
	)
	if err != nil {
		return apperr.InvalidInput("invalid pagination: %v", err)
	}
	return nil
}

// Offset is the number of records skipped before the page.
func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Params are the inventory listing filters. Nil bounds and empty sets impose
// no constraint.
type Params struct {
	Page

	StoreNames     []string
	Flavors        []string
	MinQuantity    *int
	MaxQuantity    *int
	MinDate        *time.Time
	MaxDate        *time.Time
	IsSeasonFlavor *bool
}

// ParsePage reads page and limit, applying defaults for absent values.
func ParsePage(values url.Values) (Page, error) {
	page := Page{Page: DefaultPage, Limit: DefaultLimit}

	var err error
	if page.Page, err = intOr(values, KeyPage, DefaultPage); err != nil {
		return Page{}, err
	}
	if page.Limit, err = intOr(values, KeyLimit, DefaultLimit); err != nil {
		return Page{}, err
	}
	return page, page.Validate()
}

// ParseParams reads pagination and filters from a query string. Set filters
// accept repeated keys (storeNames=a&storeNames=b).
func ParseParams(values url.Values) (Params, error) {
	page, err := ParsePage(values)
	if err != nil {
		return Params{}, err
	}

	p := Params{
		Page:       page,
		StoreNames: nonEmpty(values[KeyStoreNames]),
		Flavors:    nonEmpty(values[KeyFlavors]),
	}

	if p.MinQuantity, err = optionalInt(values, KeyMinQuantity); err != nil {
		return Params{}, err
	}
	if p.MaxQuantity, err = optionalInt(values, KeyMaxQuantity); err != nil {
		return Params{}, err
	}
	if p.MinDate, err = optionalDate(values, KeyMinDate); err != nil {
		return Params{}, err
	}
	if p.MaxDate, err = optionalDate(values, KeyMaxDate); err != nil {
		return Params{}, err
	}
	if p.IsSeasonFlavor, err = optionalBool(values, KeyIsSeasonFlavor); err != nil {
		return Params{}, err
	}
	return p, nil
}

func intOr(values url.Values, key string, def int) (int, error) {
	v, err := optionalInt(values, key)
	if err != nil || v == nil {
		return def, err
	}
	return *v, nil
}

func optionalInt(values url.Values, key string) (*int, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperr.InvalidInput("%s: %q is not an integer", key, raw)
	}
	return &n, nil
}

func optionalDate(values url.Values, key string) (*time.Time, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil, nil
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		return nil, apperr.InvalidInput("%s: %q is not yyyy-MM-dd", key, raw)
	}
	return &d, nil
}

func optionalBool(values url.Values, key string) (*bool, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperr.InvalidInput("%s: %q is not a boolean", key, raw)
	}
	return &b, nil
}

func nonEmpty(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
