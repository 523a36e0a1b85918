package controllers

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/msdss/data-api/cmd/data-api/models"
)

// queryOptions reads the query grammar off the request's query string. The
// single values "*" and "None" for select both mean no projection, the
// latter matters for aggregate queries where no plain columns survive.
func queryOptions(c *gin.Context) (models.QueryOptions, error) {
	options := models.QueryOptions{
		Select:        c.QueryArray("select"),
		Where:         c.QueryArray("where"),
		WhereBoolean:  c.DefaultQuery("where-boolean", "AND"),
		GroupBy:       c.QueryArray("group-by"),
		Aggregate:     c.QueryArray("aggregate"),
		AggregateFunc: c.QueryArray("aggregate-func"),
		OrderBy:       c.QueryArray("order-by"),
		OrderBySort:   c.QueryArray("order-by-sort"),
	}
	if len(options.Select) == 1 && (options.Select[0] == "*" || options.Select[0] == "None") {
		options.Select = nil
	}

	var err error
	options.Limit, err = intQuery(c, "limit")
	if err != nil {
		return options, err
	}
	options.Offset, err = intQuery(c, "offset")
	return options, err
}

func intQuery(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", name, raw)
	}
	return value, nil
}

func boolQuery(c *gin.Context, name string) (bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return false, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean, got %q", name, raw)
	}
	return value, nil
}
