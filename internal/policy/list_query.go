package policy

import (
	"math"
	"strconv"
	"strings"

	"taskboard.com/taskboard/internal/constants"
	apperrors "taskboard.com/taskboard/internal/errors"
)

// ListParams carries the raw list query string values.
type ListParams struct {
	Search   string
	Status   string
	Priority string
	Tags     string
	Page     string
	Limit    string
}

// ListQuery is a validated list request with pagination already clamped.
type ListQuery struct {
	Search   string
	Status   constants.TaskStatus
	Priority constants.TaskPriority
	Tags     []string
	Page     int
	Limit    int
}

func NewListQuery(params ListParams) (ListQuery, error) {
	query := ListQuery{
		Page:  clampPage(params.Page),
		Limit: clampLimit(params.Limit),
	}
	// past this page the offset would overflow; the page is empty anyway
	query.Page = min(query.Page, math.MaxInt/query.Limit)

	if strings.TrimSpace(params.Search) != "" {
		query.Search = params.Search
	}

	if params.Status != "" {
		status := constants.TaskStatus(params.Status)
		if !status.Valid() {
			return ListQuery{}, apperrors.ErrInvalidStatus
		}
		query.Status = status
	}

	if params.Priority != "" {
		priority := constants.TaskPriority(params.Priority)
		if !priority.Valid() {
			return ListQuery{}, apperrors.ErrInvalidPriority
		}
		query.Priority = priority
	}

	if params.Tags != "" {
		query.Tags = SplitTags(params.Tags)
	}

	return query, nil
}

func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

func clampPage(raw string) int {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || page == 0 {
		return constants.DefaultPage
	}
	return max(1, page)
}

func clampLimit(raw string) int {
	limit, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || limit == 0 {
		return constants.DefaultLimit
	}
	return min(constants.MaxLimit, max(1, limit))
}
