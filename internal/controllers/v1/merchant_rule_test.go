package v1_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/pocketledger/backend/internal/classify"
	v1 "github.com/pocketledger/backend/internal/controllers/v1"
	"github.com/pocketledger/backend/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestMerchantRule creates a test merchant rule via the v1 API.
func createTestMerchantRule(t *testing.T, rule v1.MerchantRuleEditable, expectedStatus ...int) v1.MerchantRuleResponse {
	if rule.UserID == uuid.Nil {
		rule.UserID = uuid.New()
	}

	// Default to 201 Created as expected status
	if len(expectedStatus) == 0 {
		expectedStatus = append(expectedStatus, http.StatusCreated)
	}

	reqBody := []v1.MerchantRuleEditable{rule}

	r := test.Request(t, http.MethodPost, "http://example.com/v1/merchant-rules", reqBody)
	test.AssertHTTPStatus(t, &r, expectedStatus...)

	var response v1.MerchantRuleCreateResponse
	test.DecodeResponse(t, &r, &response)

	return response.Data[0]
}

func (suite *TestSuiteStandard) TestMerchantRulesOptions() {
	tests := []struct {
		name     string
		status   int
		id       string
		pathFunc func() string
	}{
		{"Does not exist", http.StatusNotFound, uuid.New().String(), nil},
		{"Invalid UUID", http.StatusBadRequest, "NotParseableAsUUID", nil},
		{
			"Success",
			http.StatusNoContent,
			"",
			func() string {
				return createTestMerchantRule(suite.T(), v1.MerchantRuleEditable{
					MatchField: classify.MatchFieldMerchantNorm,
					MatchType:  classify.MatchTypeContains,
					MatchValue: "LANDLORD",
				}).Data.Links.Self
			},
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			path := fmt.Sprintf("http://example.com/v1/merchant-rules/%s", tt.id)
			if tt.pathFunc != nil {
				path = tt.pathFunc()
			}

			r := test.Request(t, http.MethodOptions, path, "")
			test.AssertHTTPStatus(t, &r, tt.status)
		})
	}
}

func (suite *TestSuiteStandard) TestMerchantRuleCreate() {
	response := createTestMerchantRule(suite.T(), v1.MerchantRuleEditable{
		Name:          "Rent",
		MatchField:    classify.MatchFieldMerchantNorm,
		MatchType:     classify.MatchTypeEquals,
		MatchValue:    "ACME PROPERTY MGMT",
		SetKind:       classify.KindTransfer,
		ActionExclude: true,
		Priority:      1,
	})

	require.NotNil(suite.T(), response.Data)
	assert.Equal(suite.T(), "Rent", response.Data.Name)
	assert.Equal(suite.T(), classify.KindTransfer, response.Data.SetKind)

	// No enabled flag in the request body defaults to enabled
	require.NotNil(suite.T(), response.Data.Enabled)
	assert.True(suite.T(), *response.Data.Enabled)
}

func (suite *TestSuiteStandard) TestMerchantRuleCreateFails() {
	tests := []struct {
		name string
		rule v1.MerchantRuleEditable
	}{
		{"Invalid match field", v1.MerchantRuleEditable{MatchField: "raw", MatchType: classify.MatchTypeContains, MatchValue: "X"}},
		{"Invalid match type", v1.MerchantRuleEditable{MatchField: classify.MatchFieldMerchantNorm, MatchType: "fuzzy", MatchValue: "X"}},
		{"Empty match value", v1.MerchantRuleEditable{MatchField: classify.MatchFieldMerchantNorm, MatchType: classify.MatchTypeContains}},
		{"Invalid kind", v1.MerchantRuleEditable{MatchField: classify.MatchFieldMerchantNorm, MatchType: classify.MatchTypeContains, MatchValue: "X", SetKind: "banana"}},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			_ = createTestMerchantRule(t, tt.rule, http.StatusBadRequest)
		})
	}
}

// A rule with a broken regex pattern is stored, fixing it via PATCH must
// stay possible. The classifier treats it as non-matching.
func (suite *TestSuiteStandard) TestMerchantRuleMalformedRegexStored() {
	response := createTestMerchantRule(suite.T(), v1.MerchantRuleEditable{
		MatchField: classify.MatchFieldMerchantNorm,
		MatchType:  classify.MatchTypeRegex,
		MatchValue: "(",
	})

	r := test.Request(suite.T(), http.MethodPatch, response.Data.Links.Self, `{ "matchValue": "(STARBUCKS|PEETS)" }`)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
}

func (suite *TestSuiteStandard) TestMerchantRulesGetFilter() {
	userID := uuid.New()

	_ = createTestMerchantRule(suite.T(), v1.MerchantRuleEditable{UserID: userID, MatchField: classify.MatchFieldMerchantNorm, MatchType: classify.MatchTypeContains, MatchValue: "LANDLORD", Priority: 2})
	_ = createTestMerchantRule(suite.T(), v1.MerchantRuleEditable{UserID: userID, MatchField: classify.MatchFieldDescription, MatchType: classify.MatchTypeGlob, MatchValue: "VENMO*", Priority: 1})
	_ = createTestMerchantRule(suite.T(), v1.MerchantRuleEditable{MatchField: classify.MatchFieldMerchantNorm, MatchType: classify.MatchTypeContains, MatchValue: "OTHER USER"})

	tests := []struct {
		name  string
		query string
		len   int
	}{
		{"By user", fmt.Sprintf("userId=%s", userID), 2},
		{"By match type", "matchType=glob", 1},
		{"By match value", "matchValue=LANDLORD", 1},
		{"No match", "matchValue=DOESNOTEXIST", 0},
		{"Limit", "limit=1", 1},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/merchant-rules?%s", tt.query), "")
			test.AssertHTTPStatus(t, &r, http.StatusOK)

			var response v1.MerchantRuleListResponse
			test.DecodeResponse(t, &r, &response)
			assert.Len(t, response.Data, tt.len)
		})
	}
}

// Rules are returned in evaluation order.
func (suite *TestSuiteStandard) TestMerchantRulesOrdered() {
	userID := uuid.New()

	_ = createTestMerchantRule(suite.T(), v1.MerchantRuleEditable{UserID: userID, MatchField: classify.MatchFieldMerchantNorm, MatchType: classify.MatchTypeContains, MatchValue: "SECOND", Priority: 5})
	_ = createTestMerchantRule(suite.T(), v1.MerchantRuleEditable{UserID: userID, MatchField: classify.MatchFieldMerchantNorm, MatchType: classify.MatchTypeContains, MatchValue: "FIRST", Priority: 1})

	r := test.Request(suite.T(), http.MethodGet, fmt.Sprintf("http://example.com/v1/merchant-rules?userId=%s", userID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.MerchantRuleListResponse
	test.DecodeResponse(suite.T(), &r, &response)

	require.Len(suite.T(), response.Data, 2)
	assert.Equal(suite.T(), "FIRST", response.Data[0].MatchValue)
	assert.Equal(suite.T(), "SECOND", response.Data[1].MatchValue)
}

func (suite *TestSuiteStandard) TestMerchantRuleUpdate() {
	response := createTestMerchantRule(suite.T(), v1.MerchantRuleEditable{
		MatchField: classify.MatchFieldMerchantNorm,
		MatchType:  classify.MatchTypeContains,
		MatchValue: "LANDLORD",
	})

	r := test.Request(suite.T(), http.MethodPatch, response.Data.Links.Self, `{ "enabled": false, "priority": 7 }`)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var updated v1.MerchantRuleResponse
	test.DecodeResponse(suite.T(), &r, &updated)

	require.NotNil(suite.T(), updated.Data.Enabled)
	assert.False(suite.T(), *updated.Data.Enabled)
	assert.Equal(suite.T(), uint(7), updated.Data.Priority)
	assert.Equal(suite.T(), "LANDLORD", updated.Data.MatchValue)
}

func (suite *TestSuiteStandard) TestMerchantRuleDelete() {
	response := createTestMerchantRule(suite.T(), v1.MerchantRuleEditable{
		MatchField: classify.MatchFieldMerchantNorm,
		MatchType:  classify.MatchTypeContains,
		MatchValue: "LANDLORD",
	})

	r := test.Request(suite.T(), http.MethodDelete, response.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	r = test.Request(suite.T(), http.MethodGet, response.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}
