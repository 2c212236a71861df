package fintrack

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"

	"fintrack/internal/logger"
	"fintrack/internal/models"
)

// State is the orchestrator's dataset source.
type State int

const (
	// StateUnresolved is the initial state, before startup resolution.
	StateUnresolved State = iota
	// StateLocal uses the on-device cache as the dataset source.
	StateLocal
	// StateAuthenticated uses the remote document store as the dataset source.
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateLocal:
		return "local"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unresolved"
	}
}

// APIClient is the backend surface the orchestrator needs.
type APIClient interface {
	CurrentUser(ctx context.Context) (*models.Profile, error)
	LoadFile(ctx context.Context) (*RemoteFile, error)
	SaveFile(ctx context.Context, content json.RawMessage, fileID string) (string, error)
}

// LocalStore is the on-device persistence surface the orchestrator needs.
type LocalStore interface {
	Transactions() ([]models.Transaction, bool, error)
	SaveTransactions(transactions []models.Transaction) error
	Categories() (models.CategoryState, bool, error)
	SaveCategories(categories models.CategoryState) error
}

// Orchestrator is the single decision point for where dataset reads and
// writes go. Mutations apply to in-memory state synchronously (optimistic,
// no rollback) and are persisted in the background.
//
// Saves are serialized: one save is in flight at a time, and a newer snapshot
// replaces any still-pending one. The last mutation therefore wins, rather
// than whichever save happens to complete last.
type Orchestrator struct {
	api         APIClient
	local       LocalStore
	saveTimeout time.Duration

	mu      sync.Mutex
	state   State
	dataset models.Dataset
	fileID  string
	profile *models.Profile
	lastErr error

	// seq numbers snapshots as they are enqueued; doneSeq records the newest
	// snapshot whose persistence attempt has finished.
	seq     uint64
	doneSeq uint64

	pending  chan pendingSave
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

type pendingSave struct {
	dataset models.Dataset
	seq     uint64
}

// NewOrchestrator creates an orchestrator and starts its persistence worker.
func NewOrchestrator(api APIClient, local LocalStore) *Orchestrator {
	o := &Orchestrator{
		api:         api,
		local:       local,
		saveTimeout: DefaultTimeout,
		state:       StateUnresolved,
		dataset:     models.EmptyDataset(),
		pending:     make(chan pendingSave, 1),
		done:        make(chan struct{}),
	}
	o.wg.Add(1)
	go o.worker()
	return o
}

// Resolve runs the startup resolution step: it asks the backend whether an
// identity exists and adopts the matching dataset source. It is called once
// at startup, and again by the session bridge's reload hook after login or
// logout.
func (o *Orchestrator) Resolve(ctx context.Context) error {
	profile, err := o.api.CurrentUser(ctx)
	if err != nil {
		logger.Get().Warnw("identity check failed, treating as unauthenticated", "error", err.Error())
		profile = nil
	}

	if profile != nil {
		file, err := o.api.LoadFile(ctx)
		if err != nil {
			// Entering the authenticated state without the document would
			// let the first save create a duplicate file. Stay put so the
			// caller can retry resolution.
			return errors.Wrap(err, "failed to load remote document")
		}

		dataset := models.EmptyDataset()
		fileID := ""
		if file != nil {
			dataset = parseRemoteDataset(file.Content)
			fileID = file.FileID
		}

		o.mu.Lock()
		o.state = StateAuthenticated
		o.dataset = dataset
		o.fileID = fileID
		o.profile = profile
		o.mu.Unlock()
		return nil
	}

	dataset := models.EmptyDataset()
	if transactions, ok, err := o.local.Transactions(); err != nil {
		logger.Get().Warnw("failed to read cached transactions", "error", err.Error())
	} else if ok {
		dataset.Transactions = transactions
	}
	if categories, ok, err := o.local.Categories(); err != nil {
		logger.Get().Warnw("failed to read cached categories", "error", err.Error())
	} else if ok {
		dataset.Categories = categories
	}

	o.mu.Lock()
	o.state = StateLocal
	o.dataset = dataset
	o.fileID = ""
	o.profile = nil
	o.mu.Unlock()
	return nil
}

// AddTransaction validates and prepends a transaction, generating its ID,
// then persists in the background. The stored transaction is returned.
func (o *Orchestrator) AddTransaction(t models.Transaction) (models.Transaction, error) {
	if err := t.Validate(); err != nil {
		return models.Transaction{}, errors.Wrap(err, "invalid transaction")
	}

	o.mu.Lock()
	if o.state == StateUnresolved {
		o.mu.Unlock()
		return models.Transaction{}, errors.New("dataset source not resolved yet")
	}
	if !o.dataset.Categories.Contains(t.Type, t.Category) {
		o.mu.Unlock()
		return models.Transaction{}, errors.Errorf("unknown %s category %q", t.Type, t.Category)
	}
	o.dataset = o.dataset.Add(t)
	added := o.dataset.Transactions[0]
	snapshot := o.dataset
	o.mu.Unlock()

	o.enqueue(snapshot)
	return added, nil
}

// DeleteTransaction removes a transaction by identifier. An unknown
// identifier leaves the list unchanged.
func (o *Orchestrator) DeleteTransaction(id string) error {
	o.mu.Lock()
	if o.state == StateUnresolved {
		o.mu.Unlock()
		return errors.New("dataset source not resolved yet")
	}
	o.dataset = o.dataset.Delete(id)
	snapshot := o.dataset
	o.mu.Unlock()

	o.enqueue(snapshot)
	return nil
}

// UpdateTransaction replaces the record with a matching identifier.
func (o *Orchestrator) UpdateTransaction(t models.Transaction) error {
	if err := t.Validate(); err != nil {
		return errors.Wrap(err, "invalid transaction")
	}

	o.mu.Lock()
	if o.state == StateUnresolved {
		o.mu.Unlock()
		return errors.New("dataset source not resolved yet")
	}
	if !o.dataset.Categories.Contains(t.Type, t.Category) {
		o.mu.Unlock()
		return errors.Errorf("unknown %s category %q", t.Type, t.Category)
	}
	o.dataset = o.dataset.Update(t)
	snapshot := o.dataset
	o.mu.Unlock()

	o.enqueue(snapshot)
	return nil
}

// UpdateCategories swaps the category set. Transactions keep whatever labels
// they already carry, including ones that no longer exist.
func (o *Orchestrator) UpdateCategories(c models.CategoryState) error {
	if err := validateCategoryState(c); err != nil {
		return err
	}

	o.mu.Lock()
	if o.state == StateUnresolved {
		o.mu.Unlock()
		return errors.New("dataset source not resolved yet")
	}
	o.dataset = o.dataset.WithCategories(c)
	snapshot := o.dataset
	o.mu.Unlock()

	o.enqueue(snapshot)
	return nil
}

// Dataset returns the current in-memory dataset.
func (o *Orchestrator) Dataset() models.Dataset {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.dataset
}

// State returns the resolved dataset source.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Profile returns the authenticated identity, or nil.
func (o *Orchestrator) Profile() *models.Profile {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.profile
}

// FileID returns the remembered document identifier, "" before the first
// authenticated save of a new document completes.
func (o *Orchestrator) FileID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.fileID
}

// LastError reports the most recent background persistence failure, if any.
// Persistence failures never roll back the in-memory mutation.
func (o *Orchestrator) LastError() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastErr
}

// Flush blocks until every snapshot enqueued so far has had its persistence
// attempt completed (successfully or not).
func (o *Orchestrator) Flush() {
	o.mu.Lock()
	target := o.seq
	o.mu.Unlock()
	for {
		o.mu.Lock()
		done := o.doneSeq >= target
		o.mu.Unlock()
		if done {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// Close stops the persistence worker after draining any pending snapshot.
func (o *Orchestrator) Close() {
	o.stopOnce.Do(func() { close(o.done) })
	o.wg.Wait()
}

// enqueue hands a snapshot to the worker, replacing any snapshot that has
// not started persisting yet.
func (o *Orchestrator) enqueue(snapshot models.Dataset) {
	o.mu.Lock()
	o.seq++
	item := pendingSave{dataset: snapshot, seq: o.seq}
	o.mu.Unlock()

	for {
		select {
		case o.pending <- item:
			return
		default:
			// Drop the stale pending snapshot and try again.
			select {
			case <-o.pending:
			default:
			}
		}
	}
}

func (o *Orchestrator) worker() {
	defer o.wg.Done()
	for {
		select {
		case <-o.done:
			// Persist the final snapshot, if one is still pending.
			select {
			case item := <-o.pending:
				o.persist(item)
			default:
			}
			return
		case item := <-o.pending:
			o.persist(item)
		}
	}
}

func (o *Orchestrator) persist(item pendingSave) {
	snapshot := item.dataset

	o.mu.Lock()
	state := o.state
	fileID := o.fileID
	o.mu.Unlock()

	var err error
	switch state {
	case StateLocal:
		if cacheErr := o.local.SaveTransactions(snapshot.Transactions); cacheErr != nil {
			err = cacheErr
		} else {
			err = o.local.SaveCategories(snapshot.Categories)
		}

	case StateAuthenticated:
		var content []byte
		content, err = json.Marshal(snapshot)
		if err == nil {
			ctx, cancel := context.WithTimeout(context.Background(), o.saveTimeout)
			var newID string
			newID, err = o.api.SaveFile(ctx, content, fileID)
			cancel()
			if err == nil && newID != "" {
				o.mu.Lock()
				o.fileID = newID
				o.mu.Unlock()
			}
		}
	}

	o.mu.Lock()
	if item.seq > o.doneSeq {
		o.doneSeq = item.seq
	}
	if err != nil {
		o.lastErr = err
		logger.Get().Errorw("background save failed",
			"state", state.String(),
			"error", err.Error(),
		)
	} else {
		o.lastErr = nil
	}
	o.mu.Unlock()
}

// parseRemoteDataset decodes the remote document, treating malformed content
// the same as an absent document: an empty initial dataset.
func parseRemoteDataset(content json.RawMessage) models.Dataset {
	var dataset models.Dataset
	if err := json.Unmarshal(content, &dataset); err != nil {
		logger.Get().Warnw("malformed remote document, starting empty", "error", err.Error())
		return models.EmptyDataset()
	}
	if dataset.Transactions == nil {
		dataset.Transactions = []models.Transaction{}
	}
	if dataset.Categories.Expense == nil && dataset.Categories.Income == nil {
		dataset.Categories = models.DefaultCategories()
	}
	return dataset
}

// validateCategoryState rejects duplicate labels within a list. The same
// label may appear in both lists.
func validateCategoryState(c models.CategoryState) error {
	for _, list := range [][]string{c.Expense, c.Income} {
		seen := make(map[string]bool, len(list))
		for _, label := range list {
			if label == "" {
				return errors.New("category labels must not be empty")
			}
			if seen[label] {
				return errors.Errorf("duplicate category label %q", label)
			}
			seen[label] = true
		}
	}
	return nil
}
