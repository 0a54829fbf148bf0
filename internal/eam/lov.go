// internal/eam/lov.go
package eam

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"eam-assistant/internal/common/config"
	apperrors "eam-assistant/internal/common/errors"
	apphttp "eam-assistant/internal/common/http"
	"eam-assistant/internal/common/logger"
)

// LOVCache stores list-of-values results between requests.
type LOVCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// LOVFetcher reads list-of-values grids from the EAM web endpoints.
type LOVFetcher struct {
	http   *apphttp.Client
	eamid  string
	tenant string
	cache  LOVCache
	ttl    time.Duration
	logger logger.Logger
}

// NewLOVFetcher returns nil when no LOV base URL is configured. cache may be nil.
func NewLOVFetcher(cfg config.EAMConfig, cache LOVCache, log logger.Logger, opts ...apphttp.Option) *LOVFetcher {
	if cfg.LOVBaseURL == "" {
		return nil
	}
	base := []apphttp.Option{apphttp.WithBaseURL(cfg.LOVBaseURL)}
	return &LOVFetcher{
		http:   apphttp.NewClient(config.GetDuration(cfg.Timeout), append(base, opts...)...),
		eamid:  cfg.EAMID,
		tenant: cfg.Tenant,
		cache:  cache,
		ttl:    time.Duration(cfg.LOVCacheTTL) * time.Second,
		logger: log.WithFields(map[string]interface{}{"component": "eam-lov"}),
	}
}

type gridResponse struct {
	PageData struct {
		Grid struct {
			GridResult struct {
				Grid struct {
					Data []map[string]interface{} `json:"DATA"`
				} `json:"GRID"`
			} `json:"GRIDRESULT"`
		} `json:"grid"`
	} `json:"pageData"`
}

// Categories lists the categories allowed for classCode.
func (f *LOVFetcher) Categories(ctx context.Context, organization, classCode, classOrganization string) ([]string, error) {
	form := url.Values{}
	form.Set("GRID_NAME", "LVCAT")
	form.Set("REQUEST_TYPE", "LIST.HEAD_DATA.STORED")
	setAliases(form,
		[2]string{"control.org", organization},
		[2]string{"parameter.class", classCode},
		[2]string{"parameter.classorg", classOrganization},
		[2]string{"parameter.onlymatchclass", ""},
	)
	return f.fetch(ctx, "GRIDDATA", form, "category")
}

// Classes lists the equipment classes of an organization.
func (f *LOVFetcher) Classes(ctx context.Context, organization string) ([]string, error) {
	form := url.Values{}
	form.Set("GRID_NAME", "LVCLAS")
	form.Set("REQUEST_TYPE", "LIST.HEAD_DATA.STORED")
	setAliases(form,
		[2]string{"control.org", organization},
		[2]string{"parameter.rentity", "OBJ"},
	)
	return f.fetch(ctx, "GRIDDATA", form, "class")
}

type CostCodeQuery struct {
	Organization     string
	UsageType        string
	CurrentTabName   string
	UserFunctionName string
	LOVTagName       string
}

// CostCodes lists cost codes through the LOV popup grid.
func (f *LOVFetcher) CostCodes(ctx context.Context, q CostCodeQuery) ([]string, error) {
	if q.UserFunctionName == "" {
		q.UserFunctionName = "OSOBJA"
	}
	if q.LOVTagName == "" {
		q.LOVTagName = "costcode"
	}

	form := url.Values{}
	form.Set("popup", "true")
	form.Set("GRID_NAME", "LVOBJCOST")
	form.Set("GRID_TYPE", "LOV")
	form.Set("REQUEST_TYPE", "LOV.HEAD_DATA.STORED")
	form.Set("LOV_TAGNAME", q.LOVTagName)
	form.Set("usagetype", q.UsageType)
	form.Set("USER_FUNCTION_NAME", q.UserFunctionName)
	form.Set("CURRENT_TAB_NAME", q.CurrentTabName)
	setAliases(form, [2]string{"control.org", q.Organization})

	return f.fetch(ctx, "LOVPOP", form, "costcode", "code")
}

func setAliases(form url.Values, aliases ...[2]string) {
	for i, a := range aliases {
		n := strconv.Itoa(i + 1)
		form.Set("LOV_ALIAS_NAME_"+n, a[0])
		form.Set("LOV_ALIAS_VALUE_"+n, a[1])
		form.Set("LOV_ALIAS_TYPE_"+n, "text")
	}
}

// fetch posts form to endpoint and returns the first present field of each
// grid row. Cached results are served when available.
func (f *LOVFetcher) fetch(ctx context.Context, endpoint string, form url.Values, fields ...string) ([]string, error) {
	key := lovCacheKey(endpoint, form)
	if f.cache != nil {
		var cached []string
		if err := f.cache.GetJSON(ctx, key, &cached); err == nil {
			return cached, nil
		}
	}

	form.Set("eamid", f.eamid)
	form.Set("tenant", f.tenant)

	resp, err := f.http.PostForm(ctx, endpoint, form)
	if err != nil {
		return nil, apperrors.NewEAMRequestFailedError("fetch "+form.Get("GRID_NAME"), err)
	}
	if !resp.IsSuccess() {
		snippet := string(resp.Body)
		if len(snippet) > 1000 {
			snippet = snippet[:1000]
		}
		f.logger.Error("LOV request failed", map[string]interface{}{
			"endpoint": endpoint,
			"status":   resp.StatusCode,
			"response": snippet,
		})
		return nil, apperrors.NewEAMRequestFailedError("fetch "+form.Get("GRID_NAME"), fmt.Errorf("status %d", resp.StatusCode))
	}

	var grid gridResponse
	if err := resp.JSON(&grid); err != nil {
		return nil, apperrors.NewEAMRequestFailedError("decode "+form.Get("GRID_NAME"), err)
	}

	values := make([]string, 0, len(grid.PageData.Grid.GridResult.Grid.Data))
	for _, row := range grid.PageData.Grid.GridResult.Grid.Data {
		for _, field := range fields {
			if v, ok := row[field]; ok && v != nil {
				values = append(values, fmt.Sprint(v))
				break
			}
		}
	}
	if len(values) == 0 {
		f.logger.Warn("LOV grid returned no values", map[string]interface{}{
			"grid": form.Get("GRID_NAME"),
		})
	}

	if f.cache != nil && f.ttl > 0 {
		if err := f.cache.SetJSON(ctx, key, values, f.ttl); err != nil {
			f.logger.Warn("failed to cache LOV values", map[string]interface{}{"error": err.Error()})
		}
	}
	return values, nil
}

func lovCacheKey(endpoint string, form url.Values) string {
	sum := sha1.Sum([]byte(endpoint + "?" + form.Encode()))
	return "eam:lov:" + hex.EncodeToString(sum[:])
}
