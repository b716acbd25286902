package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elitefinder/sentinela/pkg/models"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(ectologger.EctoLogMessage) {})
}

type fakeStore struct {
	alert     models.Alert
	err       error
	lastScope models.Scope
	lastID    int64
}

func (s *fakeStore) MarkRead(ctx context.Context, scope models.Scope, id int64) (*models.Alert, error) {
	s.lastScope = scope
	s.lastID = id
	if s.err != nil {
		return nil, s.err
	}
	a := s.alert
	return &a, nil
}

func (s *fakeStore) MarkResolved(ctx context.Context, scope models.Scope, id int64) (*models.Alert, error) {
	s.lastScope = scope
	s.lastID = id
	if s.err != nil {
		return nil, s.err
	}
	a := s.alert
	return &a, nil
}

type fakeEmitter struct {
	read     []int64
	resolved []int64
	err      error
}

func (e *fakeEmitter) EmitAlertRead(ctx context.Context, alert *models.Alert) error {
	if e.err != nil {
		return e.err
	}
	e.read = append(e.read, alert.ID)
	return nil
}

func (e *fakeEmitter) EmitAlertResolved(ctx context.Context, alert *models.Alert) error {
	if e.err != nil {
		return e.err
	}
	e.resolved = append(e.resolved, alert.ID)
	return nil
}

func testAlert() models.Alert {
	now := time.Now().UTC()
	return models.Alert{
		ID:             7,
		ConversationID: 42,
		TenantID:       "tenant-1",
		Type:           models.AlertTypeUrgent,
		Category:       models.AlertCategoryScore,
		CreatedAt:      now,
		ReadAt:         &now,
	}
}

func TestMarkReadEmitsEvent(t *testing.T) {
	store := &fakeStore{alert: testAlert()}
	emitter := &fakeEmitter{}
	controller := NewController(store, emitter, testLogger())

	scope := models.ScopeTenant("tenant-1")
	alert, err := controller.MarkRead(context.Background(), scope, 7)
	require.NoError(t, err)

	assert.Equal(t, int64(7), alert.ID)
	assert.Equal(t, scope, store.lastScope)
	assert.Equal(t, []int64{7}, emitter.read)
	assert.Empty(t, emitter.resolved)
}

func TestMarkResolvedEmitsEvent(t *testing.T) {
	store := &fakeStore{alert: testAlert()}
	emitter := &fakeEmitter{}
	controller := NewController(store, emitter, testLogger())

	alert, err := controller.MarkResolved(context.Background(), models.ScopeAllTenants(), 7)
	require.NoError(t, err)

	assert.Equal(t, int64(7), alert.ID)
	assert.True(t, store.lastScope.AllTenants)
	assert.Equal(t, []int64{7}, emitter.resolved)
}

func TestStoreErrorIsPassedThrough(t *testing.T) {
	store := &fakeStore{err: errors.New("not found")}
	emitter := &fakeEmitter{}
	controller := NewController(store, emitter, testLogger())

	_, err := controller.MarkRead(context.Background(), models.ScopeTenant("tenant-1"), 7)
	require.Error(t, err)
	assert.Empty(t, emitter.read)
}

func TestEmitFailureDoesNotFailTransition(t *testing.T) {
	store := &fakeStore{alert: testAlert()}
	emitter := &fakeEmitter{err: errors.New("broker down")}
	controller := NewController(store, emitter, testLogger())

	alert, err := controller.MarkResolved(context.Background(), models.ScopeTenant("tenant-1"), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), alert.ID)
}

func TestNilEmitterIsAllowed(t *testing.T) {
	store := &fakeStore{alert: testAlert()}
	controller := NewController(store, nil, testLogger())

	alert, err := controller.MarkRead(context.Background(), models.ScopeTenant("tenant-1"), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), alert.ID)
}
