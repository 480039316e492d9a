package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/reclaimr/reclaimr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func doGetLead(t *testing.T, lh *LeadHandler, key, id string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/leads/"+id, nil)
	if key != "" {
		req.Header.Set(AccountKeyHeader, key)
	}

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	w := httptest.NewRecorder()
	lh.GetByID(w, req)
	return w
}

const leadID = "0cb6f8e0-93ea-4b45-b0d3-5c2a0d0c3f1d"

func TestGetLeadByID(t *testing.T) {
	t.Run("requires auth", func(t *testing.T) {
		lh := NewLeadHandler(new(MockAccountService), new(MockLeadService), zap.NewNop().Sugar())

		w := doGetLead(t, lh, "", leadID)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects malformed id", func(t *testing.T) {
		accounts := new(MockAccountService)
		accounts.On("LookupByKey", mock.Anything, "acct_123").Return(testAccount, nil)

		lh := NewLeadHandler(accounts, new(MockLeadService), zap.NewNop().Sugar())

		w := doGetLead(t, lh, "acct_123", "not-a-uuid")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("another tenant's lead reads as not found", func(t *testing.T) {
		accounts := new(MockAccountService)
		accounts.On("LookupByKey", mock.Anything, "acct_123").Return(testAccount, nil)

		leads := new(MockLeadService)
		leads.On("GetByID", mock.Anything, leadID).
			Return(reclaimr.Lead{ID: leadID, AccountID: "someone-else"}, nil)

		lh := NewLeadHandler(accounts, leads, zap.NewNop().Sugar())

		w := doGetLead(t, lh, "acct_123", leadID)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("owned lead is returned", func(t *testing.T) {
		accounts := new(MockAccountService)
		accounts.On("LookupByKey", mock.Anything, "acct_123").Return(testAccount, nil)

		leads := new(MockLeadService)
		leads.On("GetByID", mock.Anything, leadID).
			Return(reclaimr.Lead{ID: leadID, AccountID: testAccount.ID, Source: "web_form"}, nil)

		lh := NewLeadHandler(accounts, leads, zap.NewNop().Sugar())

		w := doGetLead(t, lh, "acct_123", leadID)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
