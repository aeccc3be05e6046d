package models

import (
	"github.com/google/uuid"
	"github.com/pocketledger/backend/internal/classify"
	"gorm.io/gorm"
)

// MerchantRule is a user-authored classification override. Rules are
// evaluated before the built-in heuristics, ascending priority first.
type MerchantRule struct {
	DefaultModel
	UserID uuid.UUID `json:"userId" gorm:"index"`
	Name   string    `json:"name" example:"Ignore rent transfers"`

	MatchField classify.MatchField `json:"matchField" example:"merchant_norm"`
	MatchType  classify.MatchType  `json:"matchType" example:"contains"`
	MatchValue string              `json:"matchValue" example:"LANDLORD"`

	ActionExclude bool          `json:"actionExclude"`
	SetKind       classify.Kind `json:"setKind,omitempty" example:"transfer"`
	SetCategory   string        `json:"setCategory,omitempty" example:"Rent"`

	Priority uint  `json:"priority" example:"1"` // Ascending, lower value wins
	Enabled  *bool `json:"enabled"`              // Defaults to true when unset
}

func (r *MerchantRule) BeforeSave(_ *gorm.DB) error {
	// A rule created without an explicit enabled flag is enabled. The
	// pointer distinguishes unset from an explicit false.
	if r.Enabled == nil {
		enabled := true
		r.Enabled = &enabled
	}

	if r.MatchField != classify.MatchFieldMerchantNorm && r.MatchField != classify.MatchFieldDescription {
		return ErrMatchFieldInvalid
	}

	switch r.MatchType {
	case classify.MatchTypeContains, classify.MatchTypeEquals, classify.MatchTypeRegex, classify.MatchTypeGlob:
	default:
		return ErrMatchTypeInvalid
	}

	if r.MatchValue == "" {
		return ErrMatchValueEmpty
	}

	// A malformed regex pattern is stored anyway, the classifier treats it
	// as non-matching. Rejecting it here would block edits that fix it.
	if r.SetKind != "" && !r.SetKind.Valid() {
		return ErrKindInvalid
	}

	return nil
}

// Rule returns the value object the classifier works with.
func (r MerchantRule) Rule() classify.Rule {
	return classify.Rule{
		MatchField:    r.MatchField,
		MatchType:     r.MatchType,
		MatchValue:    r.MatchValue,
		ActionExclude: r.ActionExclude,
		SetKind:       r.SetKind,
		SetCategory:   r.SetCategory,
		Priority:      r.Priority,
		Enabled:       r.Enabled != nil && *r.Enabled,
		Name:          r.Name,
	}
}

// RulesForUser loads the user's enabled rules ordered by ascending
// priority and converts them for the classifier.
func RulesForUser(db *gorm.DB, userID uuid.UUID) ([]classify.Rule, error) {
	var merchantRules []MerchantRule
	err := db.
		Where("user_id = ? AND enabled = ?", userID, true).
		Order("priority ASC, match_value ASC").
		Find(&merchantRules).Error
	if err != nil {
		return nil, err
	}

	rules := make([]classify.Rule, 0, len(merchantRules))
	for _, merchantRule := range merchantRules {
		rules = append(rules, merchantRule.Rule())
	}

	return rules, nil
}
