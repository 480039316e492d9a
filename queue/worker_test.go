package queue

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/reclaimr/reclaimr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type MockContactService struct {
	mock.Mock
}

func (m *MockContactService) Upsert(ctx context.Context, contact reclaimr.Contact) (reclaimr.Contact, error) {
	args := m.Called(ctx, contact)
	return args.Get(0).(reclaimr.Contact), args.Error(1)
}

type MockLeadService struct {
	mock.Mock
}

func (m *MockLeadService) Create(ctx context.Context, newLead reclaimr.Lead) error {
	args := m.Called(ctx, newLead)
	return args.Error(0)
}

func (m *MockLeadService) GetByID(ctx context.Context, id string) (reclaimr.Lead, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(reclaimr.Lead), args.Error(1)
}

func testWorker(contacts reclaimr.ContactService, leads reclaimr.LeadService) *Worker {
	return &Worker{
		contacts: contacts,
		leads:    leads,
		log:      zap.NewNop().Sugar(),
	}
}

func TestReplayPersistsContactAndLead(t *testing.T) {
	event := reclaimr.IngestEvent{
		AccountID:  "acct-1",
		Source:     "web_form",
		Email:      "a@b.com",
		Name:       "Ada",
		Context:    map[string]interface{}{"page": "/pricing"},
		ReceivedAt: time.Now().UTC().Add(-time.Minute),
	}

	contacts := new(MockContactService)
	contacts.On("Upsert", mock.Anything, mock.MatchedBy(func(c reclaimr.Contact) bool {
		return c.AccountID == "acct-1" && c.Email == "a@b.com" && c.Name == "Ada"
	})).Return(reclaimr.Contact{ID: "c-1", AccountID: "acct-1", Email: "a@b.com"}, nil)

	leads := new(MockLeadService)
	leads.On("Create", mock.Anything, mock.MatchedBy(func(l reclaimr.Lead) bool {
		return l.ContactID == "c-1" &&
			l.Source == "web_form" &&
			l.Status == reclaimr.StatusOpen &&
			l.CreatedAt.Equal(event.ReceivedAt)
	})).Return(nil)

	w := testWorker(contacts, leads)

	assert.NoError(t, w.replay(context.Background(), event))
	contacts.AssertExpectations(t)
	leads.AssertExpectations(t)
}

func TestReplayPropagatesUnavailability(t *testing.T) {
	contacts := new(MockContactService)
	contacts.On("Upsert", mock.Anything, mock.Anything).
		Return(reclaimr.Contact{}, fmt.Errorf("upsert: %w", reclaimr.ErrStoreUnavailable))

	w := testWorker(contacts, new(MockLeadService))

	err := w.replay(context.Background(), reclaimr.IngestEvent{AccountID: "acct-1", Source: "web_form", Email: "a@b.com"})
	assert.ErrorIs(t, err, reclaimr.ErrStoreUnavailable)
}

func TestReplayDefaultsMissingContext(t *testing.T) {
	contacts := new(MockContactService)
	contacts.On("Upsert", mock.Anything, mock.Anything).
		Return(reclaimr.Contact{ID: "c-1"}, nil)

	leads := new(MockLeadService)
	leads.On("Create", mock.Anything, mock.MatchedBy(func(l reclaimr.Lead) bool {
		return l.Context != nil && len(l.Context) == 0
	})).Return(nil)

	w := testWorker(contacts, leads)

	event := reclaimr.IngestEvent{AccountID: "acct-1", Source: "web_form", Phone: "+15551234567", ReceivedAt: time.Now()}
	assert.NoError(t, w.replay(context.Background(), event))
	leads.AssertExpectations(t)
}
