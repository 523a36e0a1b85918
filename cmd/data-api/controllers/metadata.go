package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"

	"github.com/msdss/data-api/cmd/data-api/helpers"
	"github.com/msdss/data-api/cmd/data-api/models"
	"github.com/msdss/data-api/cmd/data-api/services"
)

// GetMetadata returns the descriptor row of a dataset. The access service
// carries the route's table restrictions; the ledger itself enforces that
// only the metadata table is ever read.
func GetMetadata(access *services.DataService, metadata *services.MetadataService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		dataset := c.Param("dataset")
		if err := access.CheckAccess(ctx, dataset); err != nil {
			helpers.HandleError(c, err)
			return
		}
		row, err := metadata.Get(ctx, dataset)
		if err != nil {
			helpers.HandleError(c, err)
			return
		}
		if row == nil {
			helpers.HandleError(c, models.NewNotFound(dataset))
			return
		}
		c.JSON(http.StatusOK, row)
	}
}

// UpdateMetadata applies descriptor fields to a dataset's ledger row. Upload
// user and creation/update times can not be updated through it.
func UpdateMetadata(access *services.DataService, metadata *services.MetadataService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request models.UpdateMetadataRequest
		if err := json.NewDecoder(c.Request.Body).Decode(&request); err != nil {
			helpers.HandleInvalidInputError(c, err)
			return
		}
		fields := request.Fields()
		if len(fields) == 0 {
			helpers.HandleInvalidInputError(c, errors.New("at least one metadata field is required"))
			return
		}

		ctx := c.Request.Context()
		dataset := c.Param("dataset")
		if err := access.CheckAccess(ctx, dataset); err != nil {
			helpers.HandleError(c, err)
			return
		}
		fields["updated_at"] = time.Now()
		if err := metadata.Update(ctx, dataset, fields); err != nil {
			helpers.HandleError(c, err)
			return
		}
		c.Status(http.StatusOK)
	}
}

// SearchData is dataset discovery: the query grammar applied to the metadata
// ledger instead of a dataset.
func SearchData(metadata *services.MetadataService) gin.HandlerFunc {
	return func(c *gin.Context) {
		options, err := queryOptions(c)
		if err != nil {
			helpers.HandleInvalidInputError(c, err)
			return
		}
		rows, err := metadata.Search(c.Request.Context(), options)
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
