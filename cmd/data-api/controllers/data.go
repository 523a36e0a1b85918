package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/msdss/data-api/cmd/data-api/helpers"
	"github.com/msdss/data-api/cmd/data-api/identity"
	"github.com/msdss/data-api/cmd/data-api/models"
	"github.com/msdss/data-api/cmd/data-api/services"
)

// QueryData serves the main query route: the full grammar of select, where,
// group-by, aggregates, ordering and paging against one dataset.
func QueryData(data *services.DataService) gin.HandlerFunc {
	return func(c *gin.Context) {
		options, err := queryOptions(c)
		if err != nil {
			helpers.HandleInvalidInputError(c, err)
			return
		}
		rows, err := data.Get(c.Request.Context(), c.Param("dataset"), options)
		if err != nil {
			helpers.HandleError(c, err)
			return
		}
		if rows == nil {
			rows = []models.Row{}
		}
		c.JSON(http.StatusOK, rows)
	}
}

// GetDataByID is a shorthand for an equality query on one identifier column,
// which defaults to "id".
func GetDataByID(data *services.DataService) gin.HandlerFunc {
	return func(c *gin.Context) {
		idColumn := c.DefaultQuery("id_column", "id")
		where := []string{fmt.Sprintf("%s = %s", idColumn, strconv.Quote(c.Param("id")))}
		rows, err := data.Get(c.Request.Context(), c.Param("dataset"), models.QueryOptions{Where: where})
		if err != nil {
			helpers.HandleError(c, err)
			return
		}
		if rows == nil {
			rows = []models.Row{}
		}
		c.JSON(http.StatusOK, rows)
	}
}

// CreateData creates a dataset from uploaded rows plus its metadata
// descriptor. The two writes are not atomic; if the descriptor insert fails
// the freshly created dataset is dropped again so no orphan table survives.
func CreateData(data *services.DataService, metadata *services.MetadataService, provider identity.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		dataset := c.Query("dataset")
		if dataset == "" {
			helpers.HandleInvalidInputError(c, errors.New("the dataset query parameter is required"))
			return
		}
		var request models.CreateDataRequest
		if err := json.NewDecoder(c.Request.Body).Decode(&request); err != nil {
			helpers.HandleInvalidInputError(c, err)
			return
		}
		if len(request.Data) == 0 {
			helpers.HandleInvalidInputError(c, errors.New("the data key must hold at least one row"))
			return
		}

		now := time.Now()
		record := models.MetadataRecord{
			Title:       request.Title,
			Description: request.Description,
			Tags:        request.Tags,
			Source:      request.Source,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if user := provider.CurrentUser(c); user != nil {
			record.CreatedBy = user.Name
		}

		ctx := c.Request.Context()
		if err := data.Create(ctx, dataset, request.Data); err != nil {
			helpers.HandleError(c, err)
			return
		}
		if err := metadata.Create(ctx, dataset, record); err != nil {
			if dropErr := data.Delete(ctx, dataset, nil, "AND", true); dropErr != nil {
				zap.S().Errorw(
					"Failed to drop dataset after metadata create failed",
					"dataset", dataset,
					"error", dropErr,
				)
			}
			helpers.HandleError(c, err)
			return
		}
		c.Status(http.StatusCreated)
	}
}

// InsertData appends uploaded rows to an existing dataset and refreshes its
// update time.
func InsertData(data *services.DataService, metadata *services.MetadataService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var rows []models.Row
		if err := json.NewDecoder(c.Request.Body).Decode(&rows); err != nil {
			helpers.HandleInvalidInputError(c, err)
			return
		}
		if len(rows) == 0 {
			helpers.HandleInvalidInputError(c, errors.New("the request body must hold at least one row"))
			return
		}

		ctx := c.Request.Context()
		dataset := c.Param("dataset")
		if err := data.Insert(ctx, dataset, rows); err != nil {
			helpers.HandleError(c, err)
			return
		}
		if err := metadata.TouchUpdatedAt(ctx, dataset, time.Time{}); err != nil {
			helpers.HandleError(c, err)
			return
		}
		c.Status(http.StatusOK)
	}
}

// UpdateData applies the uploaded column values to all rows matching the
// filter. Without a filter the update_all flag must be set explicitly.
func UpdateData(data *services.DataService, metadata *services.MetadataService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var values models.Row
		if err := json.NewDecoder(c.Request.Body).Decode(&values); err != nil {
			helpers.HandleInvalidInputError(c, err)
			return
		}
		if len(values) == 0 {
			helpers.HandleInvalidInputError(c, errors.New("the request body must hold at least one column value"))
			return
		}
		updateAll, err := boolQuery(c, "update_all")
		if err != nil {
			helpers.HandleInvalidInputError(c, err)
			return
		}

		ctx := c.Request.Context()
		dataset := c.Param("dataset")
		err = data.Update(
			ctx,
			dataset,
			values,
			c.QueryArray("where"),
			c.DefaultQuery("where-boolean", "AND"),
			updateAll)
		if err != nil {
			helpers.HandleError(c, err)
			return
		}
		if err := metadata.TouchUpdatedAt(ctx, dataset, time.Time{}); err != nil {
			helpers.HandleError(c, err)
			return
		}
		c.Status(http.StatusOK)
	}
}

// DeleteData removes matching rows, or the whole dataset with delete_all, in
// which case the metadata descriptor goes too.
func DeleteData(data *services.DataService, metadata *services.MetadataService) gin.HandlerFunc {
	return func(c *gin.Context) {
		deleteAll, err := boolQuery(c, "delete_all")
		if err != nil {
			helpers.HandleInvalidInputError(c, err)
			return
		}

		ctx := c.Request.Context()
		dataset := c.Param("dataset")
		err = data.Delete(
			ctx,
			dataset,
			c.QueryArray("where"),
			c.DefaultQuery("where-boolean", "AND"),
			deleteAll)
		if err != nil {
			helpers.HandleError(c, err)
			return
		}
		if deleteAll {
			if err := metadata.Delete(ctx, dataset); err != nil {
				helpers.HandleError(c, err)
				return
			}
		} else if err := metadata.TouchUpdatedAt(ctx, dataset, time.Time{}); err != nil {
			helpers.HandleError(c, err)
			return
		}
		c.Status(http.StatusOK)
	}
}

// GetColumns returns the number of columns of a dataset.
func GetColumns(data *services.DataService) gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := data.GetColumns(c.Request.Context(), c.Param("dataset"))
		if err != nil {
			helpers.HandleError(c, err)
			return
		}
		c.JSON(http.StatusOK, count)
	}
}

// GetRows returns the number of rows of a dataset.
func GetRows(data *services.DataService) gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := data.GetRows(c.Request.Context(), c.Param("dataset"))
		if err != nil {
			helpers.HandleError(c, err)
			return
		}
		c.JSON(http.StatusOK, count)
	}
}
