package v1

import (
	"fmt"
	"net/http"

	"golang.org/x/exp/slices"

	"github.com/gin-gonic/gin"
	"github.com/pocketledger/backend/internal/httputil"
	"github.com/pocketledger/backend/internal/models"
)

// RegisterMerchantRuleRoutes registers the routes for merchant rules with
// the RouterGroup that is passed.
func RegisterMerchantRuleRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsMerchantRuleList)
		r.GET("", GetMerchantRules)
		r.POST("", CreateMerchantRules)
	}

	// MerchantRule with ID
	{
		r.OPTIONS("/:id", OptionsMerchantRuleDetail)
		r.GET("/:id", GetMerchantRule)
		r.PATCH("/:id", UpdateMerchantRule)
		r.DELETE("/:id", DeleteMerchantRule)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			MerchantRules
// @Success		204
// @Router			/v1/merchant-rules [options]
func OptionsMerchantRuleList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			MerchantRules
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/merchant-rules/{id} [options]
func OptionsMerchantRuleDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	err = models.DB.First(&models.MerchantRule{}, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// @Summary		Create merchant rules
// @Description	Creates merchant rules from the list of submitted rule data. The response code is the highest response code number that a single rule creation would have caused. If it is not equal to 201, at least one rule has an error.
// @Tags			MerchantRules
// @Produce		json
// @Success		201		{object}	MerchantRuleCreateResponse
// @Failure		400		{object}	MerchantRuleCreateResponse
// @Failure		500		{object}	MerchantRuleCreateResponse
// @Param			rules	body		[]MerchantRuleEditable	true	"MerchantRules"
// @Router			/v1/merchant-rules [post]
func CreateMerchantRules(c *gin.Context) {
	var editables []MerchantRuleEditable

	err := httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), MerchantRuleCreateResponse{
			Error: &e,
		})
		return
	}

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := MerchantRuleCreateResponse{}

	for _, editable := range editables {
		rule := editable.model()

		err = models.DB.Create(&rule).Error
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		data := newMerchantRule(c, rule)
		r.Data = append(r.Data, MerchantRuleResponse{Data: &data})
	}

	c.JSON(status, r)
}

// @Summary		Get merchant rules
// @Description	Returns a list of merchant rules in evaluation order
// @Tags			MerchantRules
// @Produce		json
// @Success		200			{object}	MerchantRuleListResponse
// @Failure		400			{object}	MerchantRuleListResponse
// @Failure		500			{object}	MerchantRuleListResponse
// @Param			userId		query		string	false	"Filter by user ID"
// @Param			matchField	query		string	false	"Filter by match field"
// @Param			matchType	query		string	false	"Filter by match type"
// @Param			matchValue	query		string	false	"Filter by match value"
// @Param			priority	query		uint	false	"Filter by priority"
// @Param			enabled		query		bool	false	"Filter by enabled state"
// @Param			offset		query		uint	false	"The offset of the first rule returned. Defaults to 0."
// @Param			limit		query		int		false	"Maximum number of rules to return. Defaults to 50."
// @Router			/v1/merchant-rules [get]
func GetMerchantRules(c *gin.Context) {
	var filter MerchantRuleQueryFilter
	if err := c.Bind(&filter); err != nil {
		s := httputil.ErrInvalidQuery.Error()
		c.JSON(http.StatusBadRequest, MerchantRuleListResponse{
			Error: &s,
		})
		return
	}

	// Get the parameters set in the query string
	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)

	q := models.DB.
		Order("priority ASC, match_value ASC").
		Where(filter.model(), queryFields...)

	// Filter for match value containing the query string or explicitly empty one
	if filter.MatchValue != "" {
		q = q.Where("match_value LIKE ?", fmt.Sprintf("%%%s%%", filter.MatchValue))
	} else if slices.Contains(setFields, "MatchValue") {
		q = q.Where("match_value = ''")
	}

	// Set the offset. Does not need checking since the default is 0
	q = q.Offset(int(filter.Offset))

	// Default to 50 rules and set the limit
	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	var rules []models.MerchantRule
	err := q.Find(&rules).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), MerchantRuleListResponse{Error: &e})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), MerchantRuleListResponse{Error: &e})
		return
	}

	data := make([]MerchantRule, 0)
	for _, rule := range rules {
		data = append(data, newMerchantRule(c, rule))
	}

	c.JSON(http.StatusOK, MerchantRuleListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Total:  count,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// @Summary		Get merchant rule
// @Description	Returns a specific merchant rule
// @Tags			MerchantRules
// @Produce		json
// @Success		200	{object}	MerchantRuleResponse
// @Failure		400	{object}	MerchantRuleResponse
// @Failure		404	{object}	MerchantRuleResponse
// @Failure		500	{object}	MerchantRuleResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/merchant-rules/{id} [get]
func GetMerchantRule(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), MerchantRuleResponse{
			Error: &e,
		})
		return
	}

	var rule models.MerchantRule
	err = models.DB.First(&rule, uri.ID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), MerchantRuleResponse{Error: &s})
		return
	}
	data := newMerchantRule(c, rule)

	c.JSON(http.StatusOK, MerchantRuleResponse{
		Data: &data,
	})
}

// @Summary		Update merchant rule
// @Description	Update a merchant rule. Only values to be updated need to be specified.
// @Tags			MerchantRules
// @Accept			json
// @Produce		json
// @Success		200		{object}	MerchantRuleResponse
// @Failure		400		{object}	MerchantRuleResponse
// @Failure		404		{object}	MerchantRuleResponse
// @Failure		500		{object}	MerchantRuleResponse
// @Param			id		path		URIID					true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			rule	body		MerchantRuleEditable	true	"MerchantRule"
// @Router			/v1/merchant-rules/{id} [patch]
func UpdateMerchantRule(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), MerchantRuleResponse{
			Error: &e,
		})
		return
	}

	var rule models.MerchantRule
	err = models.DB.First(&rule, uri.ID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), MerchantRuleResponse{
			Error: &e,
		})
		return
	}

	updateFields, err := httputil.GetBodyFields(c, MerchantRuleEditable{})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), MerchantRuleResponse{
			Error: &e,
		})
		return
	}

	var data MerchantRuleEditable
	err = httputil.BindData(c, &data)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), MerchantRuleResponse{
			Error: &e,
		})
		return
	}

	err = models.DB.Model(&rule).Select("", updateFields...).Updates(data.model()).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), MerchantRuleResponse{
			Error: &e,
		})
		return
	}

	response := newMerchantRule(c, rule)

	c.JSON(http.StatusOK, MerchantRuleResponse{
		Data: &response,
	})
}

// @Summary		Delete merchant rule
// @Description	Deletes a merchant rule. Batches classified with the rule keep their classification until reclassified.
// @Tags			MerchantRules
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/merchant-rules/{id} [delete]
func DeleteMerchantRule(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	var rule models.MerchantRule
	err = models.DB.First(&rule, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	err = models.DB.Delete(&rule).Error
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}
