package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"easybook/middleware"
	"easybook/models"
	"easybook/utils"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

// timeNow is the handlers' clock.
var timeNow = func() time.Time { return time.Now().UTC() }

// actorFrom returns the caller set by the auth middleware.
func actorFrom(c *gin.Context) models.Actor {
	role, _ := c.Get(middleware.ContextRole)
	r, _ := role.(models.Role)
	return models.Actor{ID: c.GetString(middleware.ContextUserID), Role: r}
}

// bindJSON decodes the body into req. Field rules are checked by the services.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		if errors.Is(err, io.EOF) {
			utils.RespondError(c, utils.NewValidationError("Request body is required"))
			return false
		}
		utils.RespondError(c, utils.NewValidationError("Invalid request body", utils.FieldError{Message: err.Error()}))
		return false
	}
	return true
}

func pageFrom(c *gin.Context, defaultLimit, max int) models.Page {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return models.Page{Page: page, Limit: limit}.Normalize(defaultLimit, max)
}

func paginationFor(page models.Page, total int64) models.Pagination {
	return models.NewPagination(page, total)
}

func respondPage(c *gin.Context, key string, items interface{}, page models.Page, total int64) {
	utils.RespondOK(c, http.StatusOK, "", gin.H{
		key:          items,
		"pagination": paginationFor(page, total),
	})
}

func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		if t, err = time.Parse(time.RFC3339, value); err != nil {
			return time.Time{}, utils.NewValidationError("Validation failed", utils.FieldError{Field: field, Message: field + " must be a YYYY-MM-DD date"})
		}
	}
	return t.UTC(), nil
}

// dateRangeFrom reads startDate and endDate. endDate is inclusive. With no
// startDate the range opens defaultDays before today.
func dateRangeFrom(c *gin.Context, now time.Time, defaultDays int) (models.DateRange, error) {
	today := now.UTC().Truncate(24 * time.Hour)
	r := models.DateRange{To: today.AddDate(0, 0, 1)}
	if defaultDays > 0 {
		r.From = today.AddDate(0, 0, -defaultDays)
	}
	if v := c.Query("startDate"); v != "" {
		from, err := parseDate("startDate", v)
		if err != nil {
			return r, err
		}
		r.From = from
	}
	if v := c.Query("endDate"); v != "" {
		to, err := parseDate("endDate", v)
		if err != nil {
			return r, err
		}
		r.To = to.Truncate(24*time.Hour).AddDate(0, 0, 1)
	}
	if !r.From.IsZero() && !r.To.After(r.From) {
		return r, utils.NewValidationError("Validation failed", utils.FieldError{Field: "endDate", Message: "endDate must not be before startDate"})
	}
	return r, nil
}

func bucketFrom(c *gin.Context) (models.Bucket, error) {
	b, err := models.ParseBucket(c.Query("period"))
	if err != nil {
		return "", utils.NewValidationError("Validation failed", utils.FieldError{Field: "period", Message: "period must be one of daily weekly monthly"})
	}
	return b, nil
}
