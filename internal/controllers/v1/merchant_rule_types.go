package v1

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pocketledger/backend/internal/classify"
	"github.com/pocketledger/backend/internal/models"
	pl_uuid "github.com/pocketledger/backend/internal/uuid"
)

type MerchantRuleEditable struct {
	UserID uuid.UUID `json:"userId" example:"9dcc6e6e-cfda-48cd-93ad-1ba4224a5a7e"` // ID of the user the rule belongs to
	Name   string    `json:"name" example:"Ignore rent transfers" default:""`       // Human readable name of the rule

	MatchField classify.MatchField `json:"matchField" example:"merchant_norm"` // Row field the rule matches on
	MatchType  classify.MatchType  `json:"matchType" example:"contains"`       // How matchValue is interpreted
	MatchValue string              `json:"matchValue" example:"LANDLORD"`      // The pattern to match

	ActionExclude bool          `json:"actionExclude" example:"true" default:"false"` // Exclude matching rows from spend
	SetKind       classify.Kind `json:"setKind" example:"transfer" default:""`        // Kind to assign to matching rows
	SetCategory   string        `json:"setCategory" example:"Rent" default:""`        // Category to assign to matching rows

	Priority uint  `json:"priority" example:"1"`                  // Evaluation order, ascending. Lower values win.
	Enabled  *bool `json:"enabled" example:"true" default:"true"` // Disabled rules are kept but never applied. Defaults to true.
}

// model returns the database resource for the API representation of the editable fields
func (editable MerchantRuleEditable) model() models.MerchantRule {
	return models.MerchantRule{
		UserID:        editable.UserID,
		Name:          editable.Name,
		MatchField:    editable.MatchField,
		MatchType:     editable.MatchType,
		MatchValue:    editable.MatchValue,
		ActionExclude: editable.ActionExclude,
		SetKind:       editable.SetKind,
		SetCategory:   editable.SetCategory,
		Priority:      editable.Priority,
		Enabled:       editable.Enabled,
	}
}

type MerchantRuleLinks struct {
	Self string `json:"self" example:"https://example.com/api/v1/merchant-rules/95685c82-53c6-455d-b235-f49960b73b21"` // The rule itself
}

// MerchantRule is the API representation of a merchant rule.
type MerchantRule struct {
	models.DefaultModel
	MerchantRuleEditable
	Links MerchantRuleLinks `json:"links"`
}

func newMerchantRule(c *gin.Context, model models.MerchantRule) MerchantRule {
	url := c.GetString(string(models.DBContextURL))

	return MerchantRule{
		DefaultModel: model.DefaultModel,
		MerchantRuleEditable: MerchantRuleEditable{
			UserID:        model.UserID,
			Name:          model.Name,
			MatchField:    model.MatchField,
			MatchType:     model.MatchType,
			MatchValue:    model.MatchValue,
			ActionExclude: model.ActionExclude,
			SetKind:       model.SetKind,
			SetCategory:   model.SetCategory,
			Priority:      model.Priority,
			Enabled:       model.Enabled,
		},
		Links: MerchantRuleLinks{
			Self: fmt.Sprintf("%s/v1/merchant-rules/%s", url, model.ID),
		},
	}
}

type MerchantRuleListResponse struct {
	Data       []MerchantRule `json:"data"`                                                          // List of rules
	Error      *string        `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination    `json:"pagination"`                                                    // Pagination information
}

type MerchantRuleCreateResponse struct {
	Error *string                `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  []MerchantRuleResponse `json:"data"`                                                          // List of created rules
}

func (t *MerchantRuleCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	t.Data = append(t.Data, MerchantRuleResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type MerchantRuleResponse struct {
	Error *string       `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred for this rule
	Data  *MerchantRule `json:"data"`                                                          // The rule data, if creation was successful
}

type MerchantRuleQueryFilter struct {
	UserID     pl_uuid.UUID        `form:"userId"`                      // Filter by user ID
	MatchField classify.MatchField `form:"matchField"`                  // Filter by match field
	MatchType  classify.MatchType  `form:"matchType"`                   // Filter by match type
	MatchValue string              `form:"matchValue" filterField:"false"` // Filter by match value, fuzzy
	Priority   uint                `form:"priority"`                    // Filter by priority
	Enabled    bool                `form:"enabled"`                     // Filter by enabled state
	Offset     uint                `form:"offset" filterField:"false"`  // The offset of the first rule returned. Defaults to 0.
	Limit      int                 `form:"limit" filterField:"false"`   // Maximum number of rules to return. Defaults to 50.
}

func (f MerchantRuleQueryFilter) model() models.MerchantRule {
	return models.MerchantRule{
		UserID:     f.UserID.UUID,
		MatchField: f.MatchField,
		MatchType:  f.MatchType,
		Priority:   f.Priority,
		Enabled:    &f.Enabled,
	}
}
