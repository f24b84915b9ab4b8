package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/atinyakov/ExpenseKeeper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createExpense(t *testing.T, api *testAPI, token string, body any) models.Expense {
	t.Helper()
	res := api.call(http.MethodPost, "/api/v1/expenses", bearer(token), body)
	require.Equal(t, http.StatusCreated, res.Status)
	var e models.Expense
	require.NoError(t, json.Unmarshal(res.Data, &e))
	return e
}

func TestExpenses_OwnerIsCaller(t *testing.T) {
	api := newTestAPI(t)
	alice, aliceToken := api.signUp("alice@example.com")
	bob, _ := api.signUp("bob@example.com")

	e := createExpense(t, api, aliceToken, map[string]any{
		"amount_cents": 1250,
		"description":  "  coffee  ",
		"user_id":      bob.ID,
	})
	assert.Equal(t, alice.ID, e.UserID)
	assert.Equal(t, "coffee", e.Description)
	assert.False(t, e.OccurredAt.IsZero())
}

func TestExpenses_Isolation(t *testing.T) {
	api := newTestAPI(t)
	_, aliceToken := api.signUp("alice@example.com")
	_, bobToken := api.signUp("bob@example.com")

	mine := createExpense(t, api, aliceToken, `{"amount_cents":100,"description":"alice"}`)
	theirs := createExpense(t, api, bobToken, `{"amount_cents":200,"description":"bob"}`)

	res := api.call(http.MethodGet, "/api/v1/expenses", bearer(aliceToken), nil)
	require.Equal(t, http.StatusOK, res.Status)
	var list []models.Expense
	require.NoError(t, json.Unmarshal(res.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, mine.ID, list[0].ID)
	require.NotNil(t, res.Meta)
	assert.Equal(t, 1, res.Meta.Total)

	theirPath := fmt.Sprintf("/api/v1/expenses/%d", theirs.ID)
	missingPath := "/api/v1/expenses/424242"
	for _, rt := range []struct {
		method string
		body   any
	}{
		{http.MethodGet, nil},
		{http.MethodPatch, `{"description":"mine now"}`},
		{http.MethodDelete, nil},
	} {
		foreign := api.call(rt.method, theirPath, bearer(aliceToken), rt.body)
		missing := api.call(rt.method, missingPath, bearer(aliceToken), rt.body)

		assert.Equal(t, http.StatusNotFound, foreign.Status, rt.method)
		require.NotNil(t, foreign.Error)
		require.NotNil(t, missing.Error)
		assert.Equal(t, missing.Status, foreign.Status)
		assert.Equal(t, *missing.Error, *foreign.Error)
		assert.Equal(t, "Expense not found", foreign.Error.Message)
	}

	res = api.call(http.MethodGet, theirPath, bearer(bobToken), nil)
	require.Equal(t, http.StatusOK, res.Status)
	var got models.Expense
	require.NoError(t, json.Unmarshal(res.Data, &got))
	assert.Equal(t, "bob", got.Description)
}

func TestExpenses_Pagination(t *testing.T) {
	api := newTestAPI(t)
	_, token := api.signUp("pager@example.com")
	_, otherToken := api.signUp("other@example.com")

	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		createExpense(t, api, token, map[string]any{
			"amount_cents": i + 1,
			"description":  fmt.Sprintf("e%d", i),
			"occurred_at":  base.Add(time.Duration(i) * time.Hour).Format(time.RFC3339),
		})
	}
	createExpense(t, api, otherToken, `{"amount_cents":1,"description":"noise"}`)

	res := api.call(http.MethodGet, "/api/v1/expenses?page=2&limit=2", bearer(token), nil)
	require.Equal(t, http.StatusOK, res.Status)
	var list []models.Expense
	require.NoError(t, json.Unmarshal(res.Data, &list))
	require.Len(t, list, 2)
	assert.Equal(t, "e2", list[0].Description)
	assert.Equal(t, "e1", list[1].Description)
	assert.Equal(t, 2, res.Meta.Page)
	assert.Equal(t, 2, res.Meta.Limit)
	assert.Equal(t, 5, res.Meta.Total)

	res = api.call(http.MethodGet, "/api/v1/expenses", bearer(token), nil)
	require.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, 1, res.Meta.Page)
	assert.Equal(t, 10, res.Meta.Limit)

	for _, q := range []string{"page=0", "page=x", "limit=0", "limit=21", "limit=-1", "page=4611686018427387904&limit=20"} {
		res := api.call(http.MethodGet, "/api/v1/expenses?"+q, bearer(token), nil)
		assert.Equal(t, http.StatusBadRequest, res.Status, q)
	}
}

func TestExpenses_Validation(t *testing.T) {
	api := newTestAPI(t)
	_, token := api.signUp("v@example.com")
	long := make([]byte, 201)
	for i := range long {
		long[i] = 'x'
	}

	cases := []struct {
		name  string
		body  any
		field string
	}{
		{"missing amount", `{"description":"x"}`, "amount_cents"},
		{"zero amount", `{"amount_cents":0,"description":"x"}`, "amount_cents"},
		{"negative amount", `{"amount_cents":-5,"description":"x"}`, "amount_cents"},
		{"missing description", `{"amount_cents":5}`, "description"},
		{"blank description", `{"amount_cents":5,"description":"   "}`, "description"},
		{"long description", map[string]any{"amount_cents": 5, "description": string(long)}, "description"},
		{"bad timestamp", `{"amount_cents":5,"description":"x","occurred_at":"yesterday"}`, "occurred_at"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := api.call(http.MethodPost, "/api/v1/expenses", bearer(token), tc.body)
			require.Equal(t, http.StatusBadRequest, res.Status)
			require.NotNil(t, res.Error)
			assert.Equal(t, "VALIDATION_ERROR", res.Error.Code)
			require.NotEmpty(t, res.Error.Details)
			assert.Equal(t, tc.field, res.Error.Details[0].Field)
		})
	}

	res := api.call(http.MethodPost, "/api/v1/expenses", bearer(token), `{"amount_cents":"ten","description":"x"}`)
	assert.Equal(t, http.StatusBadRequest, res.Status)

	res = api.call(http.MethodGet, "/api/v1/expenses/abc", bearer(token), nil)
	assert.Equal(t, http.StatusBadRequest, res.Status)
	res = api.call(http.MethodGet, "/api/v1/expenses/0", bearer(token), nil)
	assert.Equal(t, http.StatusBadRequest, res.Status)
}

func TestExpenses_UpdateAndDelete(t *testing.T) {
	api := newTestAPI(t)
	_, token := api.signUp("u@example.com")
	e := createExpense(t, api, token, `{"amount_cents":100,"description":"tea"}`)
	path := fmt.Sprintf("/api/v1/expenses/%d", e.ID)

	res := api.call(http.MethodPatch, path, bearer(token), `{}`)
	assert.Equal(t, http.StatusBadRequest, res.Status)

	res = api.call(http.MethodPatch, path, bearer(token), `{"amount_cents":300}`)
	require.Equal(t, http.StatusOK, res.Status)
	var updated models.Expense
	require.NoError(t, json.Unmarshal(res.Data, &updated))
	assert.Equal(t, int64(300), updated.AmountCents)
	assert.Equal(t, "tea", updated.Description)

	res = api.call(http.MethodDelete, path, bearer(token), nil)
	assert.Equal(t, http.StatusNoContent, res.Status)

	res = api.call(http.MethodGet, path, bearer(token), nil)
	assert.Equal(t, http.StatusNotFound, res.Status)
	res = api.call(http.MethodDelete, path, bearer(token), nil)
	assert.Equal(t, http.StatusNotFound, res.Status)
}
